package sentiment

import (
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

func buildSentimentMessages(text string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: "You are a sentiment analysis assistant. Analyze the overall sentiment of the review.",
		},
		{
			Role: openai.ChatMessageRoleUser,
			Content: fmt.Sprintf("Analyze the sentiment of this hotel review. Choose one: very_positive, positive, neutral, negative, very_negative.\n\nReview: %s\n\nSentiment:",
				text),
		},
	}
}

const aspectSystemPrompt = "You are an expert hotel feedback analyst. Your task is to extract specific aspects " +
	"from reviews and evaluate their sentiment. IMPORTANT: All your responses must be in English, " +
	"including all explanations and reasoning."

const aspectUserPromptTemplate = `Analyze the following hotel review.

Review Text: "%s"

Instructions:
1. **Identification**: Identify specific mentions related to these 6 categories ONLY:
   - Room (cleanliness, comfort, size, noise, bed)
   - Location (proximity, view, neighborhood)
   - Price (value, cost, deposit)
   - Service (staff, check-in, attitude)
   - Food (breakfast, restaurant, drinks)
   - Facilities (wifi, pool, gym, parking, elevator)

2. **Classification**: Map any identified point to one of the 6 categories above. Ignore irrelevant points.

3. **Sentiment**: Rate each identified aspect as: very_positive, positive, neutral, negative, or very_negative.

4. **Reasoning**: Write a brief summary (1-2 sentences) in English explaining the overall impression.

5. **Output**: Return a valid JSON object. Do not include markdown formatting like ` + "```json" + `.

IMPORTANT: All text in your response MUST be in English, including the explanation field.

JSON Structure:
{
  "overall": "sentiment_label",
  "aspects": {
    "CategoryName": "sentiment_label"
  },
  "reasoning": "English summary here",
  "aspect_details": [
    {
      "aspect": "CategoryName",
      "sentiment": "sentiment_label",
      "evidence": "Quote from text",
      "explanation": "Brief explanation in English"
    }
  ]
}
`

func buildAspectMessages(text string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: aspectSystemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: fmt.Sprintf(aspectUserPromptTemplate, text),
		},
	}
}

func buildSingleAspectMessages(text, aspect string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: "Analyze sentiment for a specific aspect.",
		},
		{
			Role: openai.ChatMessageRoleUser,
			Content: fmt.Sprintf("Review: %s\nAspect: %s\nSentiment (very_positive/positive/neutral/negative/very_negative):",
				text, aspect),
		},
	}
}
