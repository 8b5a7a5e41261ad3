package parsing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectChatFormat(t *testing.T) {
	require.Equal(t, FormatPlainText, DetectChatFormat("User: hi\nAI: hello"))
	require.Equal(t, FormatGenericJSON, DetectChatFormat(`{"exchanges":[]}`))
	require.Equal(t, FormatGenericJSON, DetectChatFormat(`[{"role":"user","content":"hi"}]`))
	require.Equal(t, FormatLMStudio, DetectChatFormat(`{"messages":[{"versions":[{"role":"user"}]}]}`))
	require.Equal(t, FormatPlainText, DetectChatFormat("{not json"))
}

func TestParseChatCanonicalJSON(t *testing.T) {
	content := `{
		"platform": "claude",
		"exchanges": [
			{"number": 1, "student_prompt": "What do you think of my thesis?", "ai_response": "It is a solid start.", "model_name": "claude"},
			{"student_prompt": "I disagree with your second point.", "ai_response": "Fair pushback."}
		]
	}`

	conv := ParseChat(content)
	require.Equal(t, FormatGenericJSON, conv.Format)
	require.Equal(t, "claude", conv.Platform)
	require.Equal(t, 2, conv.TotalExchanges())
	require.Equal(t, 1, conv.Exchanges[0].Number)
	// missing numbers are assigned from position
	require.Equal(t, 2, conv.Exchanges[1].Number)
	require.Equal(t, "I disagree with your second point.", conv.Exchanges[1].StudentPrompt)
}

func TestParseChatMessagesArray(t *testing.T) {
	content := `[
		{"role": "user", "content": "first question"},
		{"role": "assistant", "content": "first answer"},
		{"role": "user", "content": "second question"},
		{"role": "assistant", "content": "second answer"}
	]`

	conv := ParseChat(content)
	require.Equal(t, 2, conv.TotalExchanges())
	require.Equal(t, "first question", conv.Exchanges[0].StudentPrompt)
	require.Equal(t, "second answer", conv.Exchanges[1].AIResponse)
	require.Contains(t, conv.ParsingNotes, "Parsed as array of messages")
}

func TestParseChatLMStudioExport(t *testing.T) {
	content := `{
		"name": "essay brainstorm",
		"messages": [
			{"versions": [{"role": "user", "content": [{"type": "text", "text": "Help me stress-test my thesis."}]}]},
			{"versions": [{"role": "assistant", "steps": [{"type": "contentBlock", "content": [{"type": "text", "text": "What is your thesis?"}]}], "senderInfo": {"senderName": "qwen3:32b"}}]}
		]
	}`

	conv := ParseChat(content)
	require.Equal(t, FormatLMStudio, conv.Format)
	require.Equal(t, "essay brainstorm", conv.ConversationName)
	require.Equal(t, 1, conv.TotalExchanges())
	require.Equal(t, "Help me stress-test my thesis.", conv.Exchanges[0].StudentPrompt)
	require.Equal(t, "What is your thesis?", conv.Exchanges[0].AIResponse)
	require.Equal(t, "qwen3:32b", conv.Exchanges[0].ModelName)
}

func TestParseChatLabeledTranscript(t *testing.T) {
	content := `User: What makes an argument persuasive?
AI: Evidence, structure, and anticipating counterarguments.
User: I think emotion matters more than you suggest.
And I have an example to back that up.
AI: That is a fair critique.`

	conv := ParseChat(content)
	require.Equal(t, FormatPlainText, conv.Format)
	require.Equal(t, 2, conv.TotalExchanges())
	require.Contains(t, conv.Exchanges[1].StudentPrompt, "emotion matters more")
	require.Contains(t, conv.Exchanges[1].StudentPrompt, "example to back that up")
}

func TestParseChatAlternatingParagraphs(t *testing.T) {
	content := "my first question\n\nthe first answer\n\nmy second question\n\nthe second answer"

	conv := ParseChat(content)
	require.Equal(t, 2, conv.TotalExchanges())
	require.Equal(t, "my second question", conv.Exchanges[1].StudentPrompt)
}

func TestParseChatUnstructuredFallsBackToSingleExchange(t *testing.T) {
	conv := ParseChat("just one long block of prose with no structure at all")
	require.Equal(t, 1, conv.TotalExchanges())
	require.Contains(t, conv.ParsingNotes[0], "Warning")
}

func TestExchangeFullText(t *testing.T) {
	ex := Exchange{Number: 1, StudentPrompt: "hi", AIResponse: "hello"}
	require.Equal(t, "Student: hi\n\nAI: hello", ex.FullText())
	require.Equal(t, 7, ex.CharCount())
}
