package prompt

import "github.com/finpal/finpal-go/internal/domain"

// Persona texts are fixed; the advisor choice only selects among them.
var advisorPersonas = map[domain.Advisor]string{
	domain.AdvisorBobby: "You are Bobby, a warm and encouraging financial advisor with a nurturing personality. You use gentle language and often share personal anecdotes to make concepts relatable.",
	domain.AdvisorJess:  "You are Jess, a professional and knowledgeable financial expert who is straightforward but kind. You focus on practical, actionable advice.",
	domain.AdvisorGreg:  "You are Greg, a friendly and patient teacher who loves using simple analogies and real-world examples. You have a calm, reassuring presence.",
}

const englishInstruction = "Respond in simple, clear English suitable for elderly learners."

// Language directives accept both the profile-enum spellings and the spoken
// names used by the onboarding UI for the same scripts.
var languageInstructions = map[string]string{
	"Japanese":            "CRITICAL: You MUST respond ONLY in Japanese (日本語). Never use English except for proper nouns.",
	"Mandarin":            "CRITICAL: You MUST respond ONLY in Simplified Chinese/Mandarin (简体中文). Never use English except for proper nouns.",
	"Chinese Simplified":  "CRITICAL: You MUST respond ONLY in Simplified Chinese/Mandarin (简体中文). Never use English except for proper nouns.",
	"Cantonese":           "CRITICAL: You MUST respond ONLY in Traditional Chinese/Cantonese (繁體中文/粵語). Never use English except for proper nouns.",
	"Chinese Traditional": "CRITICAL: You MUST respond ONLY in Traditional Chinese/Cantonese (繁體中文/粵語). Never use English except for proper nouns.",
	"English":             englishInstruction,
}

// ResolveAdvisor returns the advisor whose persona will be used. Unknown or
// absent advisors fall back to Bobby rather than erroring.
func ResolveAdvisor(a domain.Advisor) domain.Advisor {
	if _, ok := advisorPersonas[a]; ok {
		return a
	}
	return domain.AdvisorBobby
}

func personaFor(a domain.Advisor) string {
	return advisorPersonas[ResolveAdvisor(a)]
}

func languageInstructionFor(l domain.Language) string {
	if instruction, ok := languageInstructions[string(l)]; ok {
		return instruction
	}
	return englishInstruction
}
