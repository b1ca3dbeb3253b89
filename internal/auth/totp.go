package auth

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/BradenHooton/passguard/pkg/crypto"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	totpPeriod     = 30
	totpDigits     = otp.DigitsSix
	totpSecretSize = 20
	qrCodeSize     = 256
)

// TOTPEnrollment is a freshly provisioned second factor.
type TOTPEnrollment struct {
	Secret          string // base32, shown to the user once
	SecretEncrypted []byte
	URL             string // otpauth:// provisioning URI
	QRCode          string // PNG data URL of URL
}

// TOTPManager provisions and validates time based one-time passwords. Secrets
// are sealed with the account id as associated data.
type TOTPManager struct {
	sealer *crypto.Sealer
	issuer string
	skew   uint
	now    func() time.Time
}

func NewTOTPManager(sealer *crypto.Sealer, issuer string, skew uint) *TOTPManager {
	return &TOTPManager{
		sealer: sealer,
		issuer: issuer,
		skew:   skew,
		now:    time.Now,
	}
}

// Provision creates a secret for accountName and renders its QR code.
func (tm *TOTPManager) Provision(userID, accountName string) (*TOTPEnrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      tm.issuer,
		AccountName: accountName,
		SecretSize:  totpSecretSize,
		Period:      totpPeriod,
		Digits:      totpDigits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	encrypted, err := tm.sealer.Seal([]byte(key.Secret()), []byte(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt TOTP secret: %w", err)
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	return &TOTPEnrollment{
		Secret:          key.Secret(),
		SecretEncrypted: encrypted,
		URL:             key.URL(),
		QRCode:          "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}

// Validate checks code against the sealed secret of userID, accepting codes
// from skew steps either side of the current one.
func (tm *TOTPManager) Validate(userID string, secretEncrypted []byte, code string) (bool, error) {
	if !ValidCodeFormat(code) {
		return false, nil
	}

	secret, err := tm.sealer.Open(secretEncrypted, []byte(userID))
	if err != nil {
		return false, fmt.Errorf("failed to decrypt TOTP secret: %w", err)
	}

	valid, err := totp.ValidateCustom(code, string(secret), tm.now().UTC(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      tm.skew,
		Digits:    totpDigits,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false, fmt.Errorf("failed to validate TOTP: %w", err)
	}
	return valid, nil
}

// ValidCodeFormat reports whether code is exactly six ASCII digits.
func ValidCodeFormat(code string) bool {
	if len(code) != 6 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
