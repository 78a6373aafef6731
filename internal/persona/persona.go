// Package persona holds the static catalog of the sixteen personality
// types the chatbot can emulate.
package persona

// Persona is one immutable catalog entry. Loaded once at process start,
// never mutated.
type Persona struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Fact        string `json:"fact"`
	Icon        string `json:"icon"`
}

// codes fixes the enumeration order used by selection surfaces.
var codes = []string{
	"INTJ", "INTP", "ENTJ", "ENTP",
	"INFJ", "INFP", "ENFJ", "ENFP",
	"ISTJ", "ISFJ", "ESTJ", "ESFJ",
	"ISTP", "ISFP", "ESTP", "ESFP",
}

var catalog = map[string]Persona{
	"INTJ": {
		Code:        "INTJ",
		Description: "Architect - Strategic, analytical, and independent",
		Fact:        "INTJs make up only 2% of the population and are known as 'The Architects' - they excel at strategic planning and long-term vision!",
		Icon:        "🏗️",
	},
	"INTP": {
		Code:        "INTP",
		Description: "Thinker - Logical, innovative, and curious",
		Fact:        "INTPs are natural theorists who love exploring complex ideas - they often become scientists, philosophers, or inventors!",
		Icon:        "🧠",
	},
	"ENTJ": {
		Code:        "ENTJ",
		Description: "Commander - Confident, strategic, and natural leaders",
		Fact:        "ENTJs are born leaders who make up 3% of the population - they're excellent at organizing people and resources to achieve goals!",
		Icon:        "👑",
	},
	"ENTP": {
		Code:        "ENTP",
		Description: "Debater - Quick-witted, clever, and conceptual",
		Fact:        "ENTPs are innovative debaters who see possibilities everywhere - they're great at brainstorming and challenging conventional thinking!",
		Icon:        "💡",
	},
	"INFJ": {
		Code:        "INFJ",
		Description: "Advocate - Creative, insightful, and principled",
		Fact:        "INFJs are the rarest personality type (1% of population) - they have incredible intuition and often become counselors or writers!",
		Icon:        "🌟",
	},
	"INFP": {
		Code:        "INFP",
		Description: "Mediator - Idealistic, loyal, and values-driven",
		Fact:        "INFPs are idealistic mediators who are driven by their values - they often excel in creative fields and helping professions!",
		Icon:        "🎨",
	},
	"ENFJ": {
		Code:        "ENFJ",
		Description: "Protagonist - Charismatic, inspiring, and natural leaders",
		Fact:        "ENFJs are natural teachers and mentors - they have an amazing ability to inspire and develop others' potential!",
		Icon:        "🎭",
	},
	"ENFP": {
		Code:        "ENFP",
		Description: "Campaigner - Enthusiastic, creative, and sociable",
		Fact:        "ENFPs are enthusiastic campaigners who bring energy to everything - they're excellent at connecting with people and generating ideas!",
		Icon:        "🦋",
	},
	"ISTJ": {
		Code:        "ISTJ",
		Description: "Logistician - Practical, fact-minded, and reliable",
		Fact:        "ISTJs are reliable logisticians who value tradition and stability - they're the backbone of many organizations!",
		Icon:        "📊",
	},
	"ISFJ": {
		Code:        "ISFJ",
		Description: "Protector - Warm-hearted, conscientious, and cooperative",
		Fact:        "ISFJs are caring protectors who remember details about people they care about - they're often found in healthcare and education!",
		Icon:        "🛡️",
	},
	"ESTJ": {
		Code:        "ESTJ",
		Description: "Executive - Organized, practical, and decisive",
		Fact:        "ESTJs are efficient executives who get things done - they're natural organizers and often become successful managers!",
		Icon:        "⚡",
	},
	"ESFJ": {
		Code:        "ESFJ",
		Description: "Consul - Caring, social, and popular",
		Fact:        "ESFJs are warm-hearted consuls who create harmony in groups - they're excellent at reading social dynamics!",
		Icon:        "🤝",
	},
	"ISTP": {
		Code:        "ISTP",
		Description: "Virtuoso - Bold, practical, and experimental",
		Fact:        "ISTPs are practical virtuosos who love working with their hands - they're great at troubleshooting and mechanical tasks!",
		Icon:        "🔧",
	},
	"ISFP": {
		Code:        "ISFP",
		Description: "Adventurer - Charming, sensitive, and artistic",
		Fact:        "ISFPs are gentle adventurers with strong aesthetic sense - they often excel in arts, music, or nature-related fields!",
		Icon:        "🌸",
	},
	"ESTP": {
		Code:        "ESTP",
		Description: "Entrepreneur - Smart, energetic, and perceptive",
		Fact:        "ESTPs are energetic entrepreneurs who live in the moment - they're great at crisis management and hands-on problem solving!",
		Icon:        "🏄",
	},
	"ESFP": {
		Code:        "ESFP",
		Description: "Entertainer - Spontaneous, enthusiastic, and playful",
		Fact:        "ESFPs are spontaneous entertainers who bring joy to others - they're natural performers and excellent at reading people's emotions!",
		Icon:        "🎉",
	},
}

// Describe looks up a persona by its four-letter code.
func Describe(code string) (*Persona, error) {
	p, ok := catalog[code]
	if !ok {
		return nil, NewUnknownPersonaError(code)
	}
	return &p, nil
}

// All returns the full catalog in the fixed enumeration order.
func All() []Persona {
	out := make([]Persona, 0, len(codes))
	for _, code := range codes {
		out = append(out, catalog[code])
	}
	return out
}
