package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Kind — класс ошибки, по которому решаем: ретраить или бросать.
type Kind int

const (
	KindPermanent Kind = iota
	KindRateLimited
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindTransient:
		return "transient"
	default:
		return "permanent"
	}
}

// Retryable — стоит ли повторять запрос.
func (k Kind) Retryable() bool {
	return k == KindRateLimited || k == KindTransient
}

// Classifier раскладывает ошибку операции по классам.
type Classifier func(err error) Kind

// Classify — классификатор по умолчанию для ответов OpenAI.
func Classify(err error) Kind {
	if err == nil {
		return KindPermanent
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if isQuotaCode(apiErr.Code) {
			return KindPermanent
		}
		return classifyStatus(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode != 0 {
			return classifyStatus(reqErr.HTTPStatusCode)
		}
		if reqErr.Err != nil {
			return Classify(reqErr.Err)
		}
		return KindTransient
	}

	// таймаут одной попытки считаем сетевой ошибкой
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return KindTransient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransient
	}

	return KindPermanent
}

func classifyStatus(code int) Kind {
	switch {
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code == http.StatusRequestTimeout:
		return KindTransient
	case code >= 500:
		return KindTransient
	default:
		return KindPermanent
	}
}

// insufficient_quota приходит с 429, но ждать бесполезно
func isQuotaCode(code any) bool {
	s, ok := code.(string)
	if !ok {
		return false
	}
	return strings.EqualFold(s, "insufficient_quota") || strings.EqualFold(s, "billing_hard_limit_reached")
}
