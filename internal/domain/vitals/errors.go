package vitals

import "fmt"

// StorageError wraps a failure reading from or writing to the vitals or
// alert store. Callers can recover the driver error with errors.Unwrap.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// ValidationError reports an ingested row that cannot become a VitalRecord.
// Row is 1-based; zero means the error concerns the whole batch.
type ValidationError struct {
	Row    int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s: %s", e.Row, e.Reason, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Field)
}
