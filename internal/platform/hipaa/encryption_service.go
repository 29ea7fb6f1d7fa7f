package hipaa

import (
	"encoding/hex"
	"fmt"

	"github.com/rs/zerolog"
)

// FieldCipher applies field-level encryption to optional PHI columns such as
// a patient's medical history. A nil or disabled FieldCipher passes values
// through unchanged.
type FieldCipher struct {
	enc FieldEncryptor
}

// NewFieldCipher builds a cipher from a 64-character hex key. An empty key
// disables encryption and logs a warning; a malformed key is an error so the
// program refuses to run with a misconfigured key.
func NewFieldCipher(hexKey string, logger zerolog.Logger) (*FieldCipher, error) {
	if hexKey == "" {
		logger.Warn().Msg("PHI encryption disabled: PHI_ENCRYPTION_KEY is not set")
		return &FieldCipher{}, nil
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("PHI_ENCRYPTION_KEY is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("PHI_ENCRYPTION_KEY must be 32 bytes (64 hex chars), got %d bytes", len(key))
	}
	enc, err := NewPHIEncryptor(key)
	if err != nil {
		return nil, err
	}
	logger.Debug().Msg("PHI field-level encryption enabled")
	return &FieldCipher{enc: enc}, nil
}

// NewFieldCipherWith wraps an existing encryptor.
func NewFieldCipherWith(enc FieldEncryptor) *FieldCipher {
	return &FieldCipher{enc: enc}
}

func (c *FieldCipher) Enabled() bool {
	return c != nil && c.enc != nil
}

// Seal encrypts *value. Nil pointers stay nil.
func (c *FieldCipher) Seal(value *string) (*string, error) {
	if value == nil || !c.Enabled() {
		return value, nil
	}
	out, err := c.enc.Encrypt(*value)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Open reverses Seal.
func (c *FieldCipher) Open(value *string) (*string, error) {
	if value == nil || !c.Enabled() {
		return value, nil
	}
	out, err := c.enc.Decrypt(*value)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
