package services

import (
	"strings"

	"modelhub-backend/internal/models"
)

// TaskTypeClassifier decides what kind of task an endpoint serves.
// It is a strategy value so classification rules can be extended and
// tested independently of the sync pass.
type TaskTypeClassifier interface {
	Classify(endpointID, category string) models.TaskType
}

type keywordRule struct {
	taskType models.TaskType
	keywords []string
}

// KeywordClassifier matches keywords against the endpoint id and
// category, in fixed priority order; the first match wins. It is a
// heuristic, not exhaustive: anything unmatched is MULTIMODAL.
type KeywordClassifier struct {
	rules []keywordRule
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		rules: []keywordRule{
			{models.TaskTypeVideo, []string{"video", "animate", "animation", "motion", "film"}},
			{models.TaskTypeAudio, []string{"audio", "speech", "tts", "voice", "music", "sound", "transcribe"}},
			{models.TaskTypeText, []string{"text", "llm", "chat", "language", "instruct", "completion"}},
			{models.TaskTypeImage, []string{"image", "img", "photo", "picture", "upscale", "flux", "sdxl", "diffusion"}},
		},
	}
}

func (c *KeywordClassifier) Classify(endpointID, category string) models.TaskType {
	haystack := strings.ToLower(endpointID + " " + category)

	for _, rule := range c.rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(haystack, keyword) {
				return rule.taskType
			}
		}
	}
	return models.TaskTypeMultimodal
}
