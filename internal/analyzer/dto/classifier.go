package dto

const (
	LabelPositive = "positive"
	LabelNegative = "negative"
)

// Classification is the verdict of the heavy sentiment classifier.
type Classification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// OpenAIRequest is the chat completion request payload.
type OpenAIRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAIResponse is the chat completion response payload.
type OpenAIResponse struct {
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Message Message `json:"message"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// HuggingFaceRequest is the text-classification inference request.
type HuggingFaceRequest struct {
	Inputs string `json:"inputs"`
}

// HuggingFaceLabel is one label/score pair of a text-classification response.
type HuggingFaceLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
