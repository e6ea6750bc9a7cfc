package node

import "strings"

// IsRateLimitError 判断是否为提供商限流错误
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit"):
		return true
	case strings.Contains(msg, "rate_limit"):
		return true
	case strings.Contains(msg, "429"):
		return true
	case strings.Contains(msg, "too many requests"):
		return true
	default:
		return false
	}
}

// IsContextLengthError 判断是否为上下文超长错误
func IsContextLengthError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "context length"):
		return true
	case strings.Contains(msg, "context_length"):
		return true
	case strings.Contains(msg, "maximum context"):
		return true
	case strings.Contains(msg, "token") && strings.Contains(msg, "exceed"):
		return true
	default:
		return false
	}
}
