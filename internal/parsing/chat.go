package parsing

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ChatFormat identifies the detected transcript format.
type ChatFormat string

const (
	FormatPlainText   ChatFormat = "plain_text"
	FormatLMStudio    ChatFormat = "lm_studio"
	FormatGenericJSON ChatFormat = "generic_json"
)

// Exchange is one student-prompt / model-response pair. Numbers are
// 1-indexed and stable across the conversation.
type Exchange struct {
	Number        int               `json:"number"`
	StudentPrompt string            `json:"student_prompt"`
	AIResponse    string            `json:"ai_response"`
	Timestamp     string            `json:"timestamp,omitempty"`
	ModelName     string            `json:"model_name,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// FullText renders the exchange the way it is embedded and cited.
func (e Exchange) FullText() string {
	return fmt.Sprintf("Student: %s\n\nAI: %s", e.StudentPrompt, e.AIResponse)
}

// CharCount is the combined prompt and response length.
func (e Exchange) CharCount() int {
	return len(e.StudentPrompt) + len(e.AIResponse)
}

// Conversation is the canonical representation of a parsed chat history.
type Conversation struct {
	Platform         string     `json:"platform"`
	Format           ChatFormat `json:"format_detected"`
	ConversationName string     `json:"conversation_name,omitempty"`
	Exchanges        []Exchange `json:"exchanges"`
	ParsingNotes     []string   `json:"parsing_notes,omitempty"`
}

// TotalExchanges returns the number of exchanges in the conversation.
func (c Conversation) TotalExchanges() int { return len(c.Exchanges) }

// DetectChatFormat inspects raw content and classifies the transcript format.
func DetectChatFormat(content string) ChatFormat {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return FormatPlainText
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return FormatPlainText
	}

	if obj, ok := decoded.(map[string]interface{}); ok {
		if messages, ok := obj["messages"].([]interface{}); ok && len(messages) > 0 {
			if first, ok := messages[0].(map[string]interface{}); ok {
				if _, ok := first["versions"]; ok {
					return FormatLMStudio
				}
			}
		}
	}

	return FormatGenericJSON
}

// ParseChat converts a raw transcript into the canonical conversation form.
// Parsing never fails outright: unparseable content degrades to a single
// exchange with a warning note so the submission is still assessable.
func ParseChat(content string) Conversation {
	switch DetectChatFormat(content) {
	case FormatLMStudio:
		return parseLMStudio(content)
	case FormatGenericJSON:
		return parseGenericJSON(content)
	default:
		return parsePlainText(content)
	}
}

type lmStudioExport struct {
	Name     string `json:"name"`
	Messages []struct {
		Versions []struct {
			Role    string `json:"role"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
			Steps []struct {
				Type    string `json:"type"`
				Content []struct {
					Type string `json:"type"`
					Text string `json:"text"`
				} `json:"content"`
			} `json:"steps"`
			SenderInfo struct {
				SenderName string `json:"senderName"`
			} `json:"senderInfo"`
		} `json:"versions"`
	} `json:"messages"`
}

func parseLMStudio(content string) Conversation {
	var export lmStudioExport
	if err := json.Unmarshal([]byte(content), &export); err != nil {
		return parsePlainText(content)
	}

	var exchanges []Exchange
	var notes []string
	number := 1

	for i := 0; i < len(export.Messages); i++ {
		if len(export.Messages[i].Versions) == 0 {
			continue
		}
		version := export.Messages[i].Versions[0]
		if version.Role != "user" {
			continue
		}

		var prompts []string
		for _, item := range version.Content {
			if item.Type == "text" {
				prompts = append(prompts, item.Text)
			}
		}
		prompt := strings.Join(prompts, "\n")

		response := ""
		model := ""
		if i+1 < len(export.Messages) && len(export.Messages[i+1].Versions) > 0 {
			next := export.Messages[i+1].Versions[0]
			if next.Role == "assistant" {
				var texts []string
				for _, step := range next.Steps {
					if step.Type != "contentBlock" {
						continue
					}
					for _, item := range step.Content {
						if item.Type == "text" {
							texts = append(texts, item.Text)
						}
					}
				}
				response = strings.Join(texts, "\n")
				model = next.SenderInfo.SenderName
				i++
			}
		}

		if prompt == "" && response == "" {
			continue
		}

		exchanges = append(exchanges, Exchange{
			Number:        number,
			StudentPrompt: prompt,
			AIResponse:    response,
			ModelName:     model,
			Metadata:      map[string]string{"source": "lm_studio"},
		})
		number++
	}

	if len(exchanges) == 0 {
		notes = append(notes, "Warning: No exchanges found in LM Studio export")
	}

	return Conversation{
		Platform:         "lm_studio",
		Format:           FormatLMStudio,
		ConversationName: export.Name,
		Exchanges:        exchanges,
		ParsingNotes:     notes,
	}
}

type genericExport struct {
	Platform  string `json:"platform"`
	Exchanges []struct {
		Number        int               `json:"number"`
		StudentPrompt string            `json:"student_prompt"`
		User          string            `json:"user"`
		AIResponse    string            `json:"ai_response"`
		Assistant     string            `json:"assistant"`
		Timestamp     string            `json:"timestamp"`
		ModelName     string            `json:"model_name"`
		Metadata      map[string]string `json:"metadata"`
	} `json:"exchanges"`
	Messages []genericMessage `json:"messages"`
}

type genericMessage struct {
	Role    string          `json:"role"`
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
	Text    string          `json:"text"`
}

func (m genericMessage) role() string {
	if m.Role != "" {
		return m.Role
	}
	return m.Type
}

func (m genericMessage) text() string {
	if len(m.Content) > 0 {
		var s string
		if err := json.Unmarshal(m.Content, &s); err == nil {
			return s
		}
		var blocks []struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(m.Content, &blocks); err == nil {
			var parts []string
			for _, b := range blocks {
				if b.Text != "" {
					parts = append(parts, b.Text)
				}
			}
			return strings.Join(parts, " ")
		}
	}
	return m.Text
}

func parseGenericJSON(content string) Conversation {
	trimmed := strings.TrimSpace(content)

	var notes []string
	var messages []genericMessage
	platform := "unknown"

	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &messages); err != nil {
			return parsePlainText(content)
		}
		notes = append(notes, "Parsed as array of messages")
	} else {
		var export genericExport
		if err := json.Unmarshal([]byte(trimmed), &export); err != nil {
			return parsePlainText(content)
		}

		if len(export.Exchanges) > 0 {
			if export.Platform != "" {
				platform = export.Platform
			} else {
				platform = "generic"
			}
			exchanges := make([]Exchange, 0, len(export.Exchanges))
			for i, ex := range export.Exchanges {
				number := ex.Number
				if number == 0 {
					number = i + 1
				}
				prompt := ex.StudentPrompt
				if prompt == "" {
					prompt = ex.User
				}
				response := ex.AIResponse
				if response == "" {
					response = ex.Assistant
				}
				exchanges = append(exchanges, Exchange{
					Number:        number,
					StudentPrompt: prompt,
					AIResponse:    response,
					Timestamp:     ex.Timestamp,
					ModelName:     ex.ModelName,
					Metadata:      ex.Metadata,
				})
			}
			return Conversation{
				Platform:     platform,
				Format:       FormatGenericJSON,
				Exchanges:    exchanges,
				ParsingNotes: notes,
			}
		}

		messages = export.Messages
	}

	var exchanges []Exchange
	number := 1
	currentUser := ""

	for _, msg := range messages {
		switch msg.role() {
		case "user", "human":
			currentUser = msg.text()
		case "assistant", "ai", "bot":
			if currentUser == "" {
				continue
			}
			exchanges = append(exchanges, Exchange{
				Number:        number,
				StudentPrompt: currentUser,
				AIResponse:    msg.text(),
				Metadata:      map[string]string{"source": "generic_json"},
			})
			number++
			currentUser = ""
		}
	}

	return Conversation{
		Platform:     platform,
		Format:       FormatGenericJSON,
		Exchanges:    exchanges,
		ParsingNotes: notes,
	}
}

var (
	userLabelPattern = regexp.MustCompile(`(?i)^\**(?:User|Human|Student|Me|Q)\**\s*[:\-]\s*`)
	aiLabelPattern   = regexp.MustCompile(`(?i)^\**(?:AI|Assistant|Claude|ChatGPT|GPT|Bot|A|Response)\**\s*[:\-]\s*`)
	paragraphSplit   = regexp.MustCompile(`\n\s*\n`)
)

func parsePlainText(content string) Conversation {
	var notes []string

	exchanges := parseLabeledTranscript(content)
	if len(exchanges) > 0 {
		notes = append(notes, "Detected labeled format (User/AI pattern)")
	} else {
		exchanges = parseAlternatingParagraphs(content)
		if len(exchanges) > 0 {
			notes = append(notes, "Parsed as alternating paragraphs")
		} else {
			notes = append(notes, "Warning: Could not detect conversation structure, treating as single exchange")
			exchanges = []Exchange{{
				Number:        1,
				StudentPrompt: "[Unable to parse - entire content below]",
				AIResponse:    content,
			}}
		}
	}

	return Conversation{
		Platform:     "plain_text",
		Format:       FormatPlainText,
		Exchanges:    exchanges,
		ParsingNotes: notes,
	}
}

// parseLabeledTranscript handles transcripts with explicit role labels at
// line starts ("User:", "**Student:**", "AI:", "Assistant -", ...).
func parseLabeledTranscript(content string) []Exchange {
	type segment struct {
		user bool
		text string
	}

	var segments []segment
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case userLabelPattern.MatchString(trimmed):
			segments = append(segments, segment{user: true, text: userLabelPattern.ReplaceAllString(trimmed, "")})
		case aiLabelPattern.MatchString(trimmed):
			segments = append(segments, segment{user: false, text: aiLabelPattern.ReplaceAllString(trimmed, "")})
		default:
			if len(segments) > 0 && trimmed != "" {
				segments[len(segments)-1].text += "\n" + trimmed
			}
		}
	}

	var exchanges []Exchange
	number := 1
	currentUser := ""
	haveUser := false

	for _, seg := range segments {
		text := strings.TrimSpace(seg.text)
		if seg.user {
			currentUser = text
			haveUser = true
			continue
		}
		if !haveUser {
			continue
		}
		exchanges = append(exchanges, Exchange{
			Number:        number,
			StudentPrompt: currentUser,
			AIResponse:    text,
		})
		number++
		currentUser = ""
		haveUser = false
	}

	return exchanges
}

// parseAlternatingParagraphs assumes prompt and response paragraphs alternate,
// separated by blank lines.
func parseAlternatingParagraphs(content string) []Exchange {
	raw := paragraphSplit.Split(strings.TrimSpace(content), -1)
	paragraphs := make([]string, 0, len(raw))
	for _, p := range raw {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}

	if len(paragraphs) < 2 {
		return nil
	}

	var exchanges []Exchange
	number := 1
	for i := 0; i+1 < len(paragraphs); i += 2 {
		exchanges = append(exchanges, Exchange{
			Number:        number,
			StudentPrompt: paragraphs[i],
			AIResponse:    paragraphs[i+1],
		})
		number++
	}

	return exchanges
}
