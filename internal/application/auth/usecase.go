package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/jhoicas/merch-stock/internal/application/dto"
	"github.com/jhoicas/merch-stock/internal/domain"
	"github.com/jhoicas/merch-stock/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// OperatorCredentials credenciales únicas del operador (hash bcrypt).
type OperatorCredentials struct {
	Username     string
	PasswordHash string
}

// AuthUseCase login del operador: verifica bcrypt y emite un JWT.
type AuthUseCase struct {
	operator OperatorCredentials
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(operator OperatorCredentials, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{operator: operator, jwtCfg: jwtCfg}
}

// Login verifica usuario/password y retorna el token. Cualquier fallo es ErrUnauthorized.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	if uc.jwtCfg.Secret == "" || uc.operator.PasswordHash == "" {
		return nil, domain.ErrUnauthorized
	}
	user := strings.TrimSpace(in.Username)
	if subtle.ConstantTimeCompare([]byte(user), []byte(uc.operator.Username)) != 1 {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(uc.operator.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, uc.operator.Username, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, ExpiresIn: uc.jwtCfg.ExpMinutes * 60}, nil
}

// HashPassword genera el hash bcrypt para OPERATOR_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
