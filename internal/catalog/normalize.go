package catalog

import (
	"encoding/json"
	"strings"
)

// Normalizers convert each provider's raw listing payload into a flat
// ordered slice of model identifiers. They are total: a body missing
// the expected array field, or not JSON at all, yields an empty list.

type modelEntry struct {
	ID string `json:"id"`
}

type dataList struct {
	Data []modelEntry `json:"data"`
}

// parseDataIDs handles the OpenAI-style {"data":[{"id":...}]} shape
// shared by most providers. A nil filter keeps everything.
func parseDataIDs(filter func(id string) bool) func([]byte) []string {
	return func(body []byte) []string {
		var list dataList
		_ = json.Unmarshal(body, &list)
		out := make([]string, 0, len(list.Data))
		for _, m := range list.Data {
			if filter != nil && !filter(m.ID) {
				continue
			}
			out = append(out, m.ID)
		}
		return out
	}
}

// Non-chat OpenAI model families are dropped from the catalog.
func openAIFilter(id string) bool {
	for _, prefix := range []string{"text", "tts", "whisper", "dall-e"} {
		if strings.HasPrefix(id, prefix) {
			return false
		}
	}
	return true
}

func xaiFilter(id string) bool {
	return !strings.Contains(id, "image")
}

type googleModel struct {
	Name                       string   `json:"name"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

// Gemini reports models as "models/<id>"; only generateContent-capable
// gemini entries are kept, with the prefix stripped.
func parseGoogleModels(body []byte) []string {
	var list struct {
		Models []googleModel `json:"models"`
	}
	_ = json.Unmarshal(body, &list)
	out := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		if !strings.HasPrefix(m.Name, "models/gemini") {
			continue
		}
		supported := false
		for _, method := range m.SupportedGenerationMethods {
			if method == "generateContent" {
				supported = true
				break
			}
		}
		if !supported {
			continue
		}
		out = append(out, strings.TrimPrefix(m.Name, "models/"))
	}
	return out
}

func parseOllamaModels(body []byte) []string {
	var list struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	_ = json.Unmarshal(body, &list)
	out := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		out = append(out, m.Name)
	}
	return out
}

// Normalize runs the provider's response normalizer. Unknown providers
// yield an empty list.
func Normalize(p Provider, body []byte) []string {
	spec, ok := specs[p]
	if !ok {
		return []string{}
	}
	return spec.parse(body)
}
