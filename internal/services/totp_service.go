package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"

	"ticket-backend/internal/auth"
	"ticket-backend/internal/models"
	"ticket-backend/internal/repositories"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const totpIssuer = "TicketBackend"

// Custom errors
var (
	ErrNoTOTPSecret    = &TOTPError{Message: "2FA setup not initiated"}
	ErrInvalidTOTPCode = &TOTPError{Message: "invalid verification code"}
	ErrTOTPNotEnabled  = &TOTPError{Message: "2FA is not enabled"}
)

type TOTPError struct {
	Message string
}

func (e *TOTPError) Error() string {
	return e.Message
}

// TOTPService runs the optional second factor for admin accounts
type TOTPService struct {
	userRepo   *repositories.UserRepository
	jwtManager *auth.JWTManager
}

func NewTOTPService(userRepo *repositories.UserRepository, jwtManager *auth.JWTManager) *TOTPService {
	return &TOTPService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
	}
}

// GenerateSetup creates a new TOTP secret and QR code for a user
func (s *TOTPService) GenerateSetup(ctx context.Context, user *models.User) (*models.TOTPSetupResponse, error) {
	// Generate new TOTP key
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, err
	}

	// Store the secret (not yet enabled)
	if err := s.userRepo.SetTOTPSecret(ctx, user.ID, key.Secret()); err != nil {
		return nil, err
	}

	// Generate QR code image
	qrImage, err := key.Image(200, 200)
	if err != nil {
		return nil, err
	}

	// Convert to base64 PNG
	var buf bytes.Buffer
	if err := png.Encode(&buf, qrImage); err != nil {
		return nil, err
	}
	qrBase64 := base64.StdEncoding.EncodeToString(buf.Bytes())

	return &models.TOTPSetupResponse{
		Secret:  key.Secret(),
		QRImage: "data:image/png;base64," + qrBase64,
	}, nil
}

// VerifyAndEnable verifies a TOTP code and enables 2FA for the user
func (s *TOTPService) VerifyAndEnable(ctx context.Context, userID int, code string) error {
	// Get user with TOTP secret
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}

	if user.TOTPSecret == "" {
		return ErrNoTOTPSecret
	}

	if !totp.Validate(code, user.TOTPSecret) {
		return ErrInvalidTOTPCode
	}

	return s.userRepo.EnableTOTP(ctx, userID)
}

// CompleteLogin exchanges a pending 2FA token plus a valid code for a
// full session token.
func (s *TOTPService) CompleteLogin(ctx context.Context, req *models.TOTPVerifyRequest) (*models.AuthResponse, error) {
	claims, err := s.jwtManager.ValidateTempToken(req.PendingToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	if !user.TOTPEnabled || user.TOTPSecret == "" {
		return nil, ErrTOTPNotEnabled
	}

	if !totp.Validate(req.Code, user.TOTPSecret) {
		return nil, ErrInvalidTOTPCode
	}

	token, err := s.jwtManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token: token,
		User:  user,
	}, nil
}
