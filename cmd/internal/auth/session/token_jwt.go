package session

import (
	"crypto/ed25519"
	"encoding/hex"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type jwtClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

type jwtEdDSAManager struct {
	issuer    string
	ttl       time.Duration
	clockSkew time.Duration

	private ed25519.PrivateKey
	public  ed25519.PublicKey
}

// NewJWTManager builds an AccessTokenManager issuing EdDSA JWTs signed
// with the Ed25519 key from cfg.SigningKeyHex.
func NewJWTManager(cfg Config) (AccessTokenManager, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(cfg.SigningKeyHex))
	if err != nil || len(raw) != ed25519.PrivateKeySize {
		return nil, ErrConfig
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, ErrConfig
	}

	priv := ed25519.PrivateKey(raw)
	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		return nil, ErrConfig
	}

	return &jwtEdDSAManager{
		issuer:    cfg.Issuer,
		ttl:       cfg.AccessTokenTTL,
		clockSkew: cfg.ClockSkew,
		private:   priv,
		public:    pub,
	}, nil
}

func (m *jwtEdDSAManager) Issue(userID, sessionID string, now time.Time) (string, time.Time, error) {
	exp := now.Add(m.ttl)

	claims := jwtClaims{
		SID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(m.private)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (m *jwtEdDSAManager) Verify(token string, now time.Time) (AccessClaims, error) {
	if token == "" || len(token) > maxCredentialLen {
		return AccessClaims{}, ErrInvalidToken
	}

	var claims jwtClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return m.public, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		// Time claims are checked below so that skew never extends exp.
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return AccessClaims{}, ErrInvalidToken
	}
	if claims.Issuer != m.issuer || claims.Subject == "" || claims.SID == "" {
		return AccessClaims{}, ErrInvalidToken
	}
	if err := checkTimeClaims(now, m.clockSkew, numericTime(claims.ExpiresAt), numericTime(claims.IssuedAt), numericTime(claims.NotBefore)); err != nil {
		return AccessClaims{}, ErrInvalidToken
	}

	return AccessClaims{
		UserID:    claims.Subject,
		SessionID: claims.SID,
		ExpiresAt: numericTime(claims.ExpiresAt),
		IssuedAt:  numericTime(claims.IssuedAt),
		Issuer:    claims.Issuer,
	}, nil
}

func numericTime(d *jwt.NumericDate) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}
