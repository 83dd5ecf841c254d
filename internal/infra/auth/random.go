package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"restapi/internal/domain/service"
	"restapi/internal/errors"
)

type randomSecrets struct{}

// NewSecretGenerator returns a SecretGenerator backed by crypto/rand.
func NewSecretGenerator() service.SecretGenerator {
	return randomSecrets{}
}

func (randomSecrets) NumericCode(digits int) (string, error) {
	if digits <= 0 {
		return "", errors.Errorf("invalid code length %d", digits)
	}

	upper := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return "", errors.Wrap(err, "generate numeric code")
	}

	return fmt.Sprintf("%0*d", digits, n), nil
}

func (randomSecrets) HexToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "generate random token")
	}

	return hex.EncodeToString(buf), nil
}
