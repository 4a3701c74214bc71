package generator

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultImageBaseURL is the illustration endpoint used when none is configured.
const DefaultImageBaseURL = "https://image.pollinations.ai/prompt"

// imageStyle is appended to every image prompt so illustrations share a look.
const imageStyle = "isometric 3d render, octane render, unreal engine 5, highly detailed, sharp focus, " +
	"cinematic lighting, professional educational illustration, 8k resolution, minimalist, " +
	"clean background, soft shadows, 3d icon style"

// ImageURL builds the 1280x720 illustration URL for prompt.
func ImageURL(base, prompt string, seed int) string {
	if base == "" {
		base = DefaultImageBaseURL
	}
	full := strings.TrimSpace(prompt) + ", " + imageStyle
	return fmt.Sprintf("%s/%s?nologo=true&seed=%d&width=1280&height=720&model=flux",
		strings.TrimRight(base, "/"), url.PathEscape(full), seed)
}
