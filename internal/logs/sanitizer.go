package logs

import (
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

// TokenSanitizer wraps a zapcore.Core and masks credential-shaped strings
// in messages and string fields before they are written.
type TokenSanitizer struct {
	zapcore.Core
	patterns []*tokenPattern
}

type tokenPattern struct {
	name  string
	regex *regexp.Regexp
	mask  func(string) string
}

// NewTokenSanitizer wraps core with credential masking.
func NewTokenSanitizer(core zapcore.Core) *TokenSanitizer {
	return &TokenSanitizer{
		Core:     core,
		patterns: defaultTokenPatterns(),
	}
}

// defaultTokenPatterns covers the token shapes of the supported providers
// plus generic OAuth material.
func defaultTokenPatterns() []*tokenPattern {
	return []*tokenPattern{
		{
			name:  "github_token",
			regex: regexp.MustCompile(`\b(gh[poushr]_[A-Za-z0-9]{36,255})\b`),
			mask:  maskKeepingPrefix(7),
		},
		{
			name:  "slack_token",
			regex: regexp.MustCompile(`\b(xox[abpors]-[A-Za-z0-9-]{10,})\b`),
			mask:  maskKeepingPrefix(5),
		},
		{
			name:  "stripe_key",
			regex: regexp.MustCompile(`\b([rs]k_(?:live|test)_[A-Za-z0-9]{16,})\b`),
			mask:  maskKeepingPrefix(8),
		},
		{
			name:  "bearer",
			regex: regexp.MustCompile(`\bBearer\s+[A-Za-z0-9\-._~+/]+=*`),
			mask: func(match string) string {
				parts := strings.SplitN(match, " ", 2)
				if len(parts) != 2 || len(parts[1]) <= 6 {
					return "Bearer ****"
				}
				return "Bearer " + parts[1][:4] + "***" + parts[1][len(parts[1])-2:]
			},
		},
		{
			name:  "jwt",
			regex: regexp.MustCompile(`\beyJ[A-Za-z0-9\-_]+\.eyJ[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+\b`),
			mask: func(match string) string {
				parts := strings.Split(match, ".")
				if len(parts) != 3 || len(parts[2]) < 4 {
					return "****"
				}
				return parts[0] + ".***." + parts[2][len(parts[2])-4:]
			},
		},
	}
}

func maskKeepingPrefix(prefix int) func(string) string {
	return func(token string) string {
		if len(token) <= prefix+2 {
			return "****"
		}
		return token[:prefix] + "***" + token[len(token)-2:]
	}
}

func (s *TokenSanitizer) sanitize(str string) string {
	result := str
	for _, pattern := range s.patterns {
		result = pattern.regex.ReplaceAllStringFunc(result, pattern.mask)
	}
	return result
}

// Write sanitizes the entry message and string fields before delegating.
func (s *TokenSanitizer) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	entry.Message = s.sanitize(entry.Message)

	sanitized := make([]zapcore.Field, len(fields))
	for i, field := range fields {
		sanitized[i] = s.sanitizeField(field)
	}
	return s.Core.Write(entry, sanitized)
}

func (s *TokenSanitizer) sanitizeField(field zapcore.Field) zapcore.Field {
	switch field.Type {
	case zapcore.StringType:
		field.String = s.sanitize(field.String)
	case zapcore.ByteStringType:
		if b, ok := field.Interface.([]byte); ok {
			field.Interface = []byte(s.sanitize(string(b)))
		}
	case zapcore.ErrorType:
		if err, ok := field.Interface.(error); ok {
			clean := s.sanitize(err.Error())
			if clean != err.Error() {
				field = zapcore.Field{Key: field.Key, Type: zapcore.StringType, String: clean}
			}
		}
	}
	return field
}

// With creates a sanitizing child core.
func (s *TokenSanitizer) With(fields []zapcore.Field) zapcore.Core {
	sanitized := make([]zapcore.Field, len(fields))
	for i, field := range fields {
		sanitized[i] = s.sanitizeField(field)
	}
	return &TokenSanitizer{
		Core:     s.Core.With(sanitized),
		patterns: s.patterns,
	}
}

// Check routes the entry through this core so Write sees it.
func (s *TokenSanitizer) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if s.Enabled(entry.Level) {
		return checkedEntry.AddCore(entry, s)
	}
	return checkedEntry
}
