package caption

import (
	"embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yml
var promptsFS embed.FS

type promptsFile struct {
	Tones map[string]string `yaml:"tones"`
}

var tonePrompts = loadTonePrompts()

func loadTonePrompts() map[string]string {
	data, err := promptsFS.ReadFile("prompts.yml")
	if err != nil {
		panic(fmt.Sprintf("embedded prompts.yml missing: %v", err))
	}

	var file promptsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		panic(fmt.Sprintf("embedded prompts.yml invalid: %v", err))
	}
	if len(file.Tones) == 0 {
		panic("embedded prompts.yml defines no tones")
	}

	return file.Tones
}

// KnownTone reports whether a tone has a prompt template.
func KnownTone(tone string) bool {
	_, ok := tonePrompts[tone]
	return ok
}

// Tones returns all configured tone names, sorted.
func Tones() []string {
	tones := make([]string, 0, len(tonePrompts))
	for tone := range tonePrompts {
		tones = append(tones, tone)
	}
	sort.Strings(tones)
	return tones
}

func buildPrompt(tone string, photoCount int) string {
	instruction, ok := tonePrompts[tone]
	if !ok {
		instruction = tonePrompts["engaging"]
	}

	subject := "this photo"
	if photoCount > 1 {
		subject = fmt.Sprintf("this set of %d photos posted together as a carousel", photoCount)
	}

	return fmt.Sprintf(
		"You are an Instagram content creator. Look at %s. %s "+
			"Include 5-10 relevant hashtags at the end. Keep the caption under 200 words. "+
			"Return ONLY the caption text with no extra commentary.",
		subject, instruction)
}
