package prompt

import (
	"fmt"
	"strings"

	"vectora/internal/types"
)

// scoreBands is included verbatim in every prompt so models share one scale.
const scoreBands = `Use this scale for ai_percent:
- 0-20: Human-written / authentic
- 21-40: Likely human with minor AI assistance
- 41-60: Mixed or uncertain
- 61-80: Likely AI-generated
- 81-100: Almost certainly AI-generated`

const responseFormat = `Respond ONLY with a JSON object in this exact format:
{"ai_percent": <integer 0-100>, "reason": "<one short sentence explaining the verdict>"}`

const textTemplate = `You are an expert AI-content detector. Analyze the following text and estimate how likely it is to be AI-generated.

Look at: repetitive phrasing, unnaturally uniform sentence structure, generic transitions, lack of personal voice, and over-polished tone.

%s

%s

Text to analyze:
"""
%s
"""`

const imageTemplate = `You are an expert in detecting AI-generated and digitally manipulated images. Examine the attached image and estimate how likely it is to be AI-generated.

Look at: inconsistent lighting and shadows, malformed hands or text, overly smooth textures, warped backgrounds, and repeated patterns.

%s

%s`

const screenTemplate = `You are an expert AI-content detector. The attached image is a screenshot region captured from a web page. It may contain text, images, or both. Estimate how likely the captured content is to be AI-generated.

Judge written content by its phrasing and structure, and visual content by its rendering artifacts.

%s

%s`

// ForText builds the plain-text authenticity prompt.
func ForText(text string) string {
	return fmt.Sprintf(textTemplate, scoreBands, responseFormat, strings.TrimSpace(text))
}

// ForImage builds the image authenticity prompt.
func ForImage() string {
	return fmt.Sprintf(imageTemplate, scoreBands, responseFormat)
}

// ForScreen builds the screenshot authenticity prompt.
func ForScreen() string {
	return fmt.Sprintf(screenTemplate, scoreBands, responseFormat)
}

// For picks the template matching feature.
func For(feature types.Feature, text string) string {
	switch feature {
	case types.FeatureImage:
		return ForImage()
	case types.FeatureScreen:
		return ForScreen()
	default:
		return ForText(text)
	}
}
