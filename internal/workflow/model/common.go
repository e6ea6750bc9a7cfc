package model

import "time"

type LLMUsageMeta struct {
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Temperature      float64
	GeneratedAt      time.Time
}

func (m LLMUsageMeta) TotalTokens() int {
	return m.PromptTokens + m.CompletionTokens
}
