package story

import "narrative-forge/internal/models"

// Genres supported by the template library. Anything else falls back to
// GenreFantasy.
const (
	GenreFantasy = "fantasy"
	GenreScifi   = "scifi"
	GenreMystery = "mystery"
)

// Template is the static seed material for one genre: the opening scene,
// the initial choices and the fixed character/world facts.
type Template struct {
	Opening        string
	InitialChoices []models.Choice
	Background     string
	Characters     map[string]string
	World          map[string]string
}

var templates = map[string]Template{
	GenreFantasy: {
		Opening: "You stand at the entrance of the ancient Crystal Caverns, a legendary place where adventurers seek the fabled Heart of the Mountain. The air is thick with magic, and you can feel the weight of destiny upon your shoulders. Your quest begins now...",
		InitialChoices: []models.Choice{
			{Text: "Enter the caverns boldly", Action: "bold_entrance"},
			{Text: "Study the entrance first", Action: "cautious_approach"},
			{Text: "Check your equipment", Action: "prepare_equipment"},
		},
		Background: "The Crystal Caverns are said to hold ancient treasures and powerful artifacts. Many have entered, but few have returned. The Heart of the Mountain is a legendary gem that grants its wielder immense power.",
		Characters: map[string]string{
			"protagonist": "A brave adventurer seeking glory and treasure",
			"mentor":      "The wise old sage who sent you on this quest",
		},
		World: map[string]string{
			"setting":     "Fantasy realm with magic and mythical creatures",
			"time_period": "Medieval fantasy era",
		},
	},
	GenreScifi: {
		Opening: "The starship Horizon drifts through the vast emptiness of space. You're the captain of this vessel, and you've just received a mysterious distress signal from a nearby planet. The fate of your crew and potentially the galaxy rests in your hands...",
		InitialChoices: []models.Choice{
			{Text: "Investigate the distress signal", Action: "investigate"},
			{Text: "Scan the planet first", Action: "scan_planet"},
			{Text: "Consult with your crew", Action: "crew_meeting"},
		},
		Background: "You're on a deep space exploration mission when you encounter an unknown signal. The planet below shows signs of advanced civilization, but something seems wrong.",
		Characters: map[string]string{
			"protagonist": "Captain of the starship Horizon",
			"crew":        "Diverse team of specialists and explorers",
		},
		World: map[string]string{
			"setting":     "Deep space exploration",
			"time_period": "Far future, interstellar era",
		},
	},
	GenreMystery: {
		Opening: "The old mansion looms before you, its windows dark and foreboding. You're a detective called to investigate the disappearance of the mansion's owner. The local police are stumped, and the family is desperate for answers...",
		InitialChoices: []models.Choice{
			{Text: "Enter the mansion", Action: "enter_mansion"},
			{Text: "Interview the neighbors", Action: "interview_neighbors"},
			{Text: "Examine the exterior", Action: "examine_exterior"},
		},
		Background: "A wealthy businessman has vanished from his mansion without a trace. No signs of forced entry, no ransom note, just an empty house and unanswered questions.",
		Characters: map[string]string{
			"protagonist": "Experienced detective with a sharp mind",
			"victim":      "The missing mansion owner",
			"suspects":    "Various family members and staff",
		},
		World: map[string]string{
			"setting":     "Modern-day detective work",
			"time_period": "Present day",
		},
	},
}

// TemplateFor returns the seed template for the given genre. Unknown genres
// silently resolve to the fantasy template, so the lookup never fails.
func TemplateFor(genre string) Template {
	if tpl, ok := templates[genre]; ok {
		return tpl
	}
	return templates[GenreFantasy]
}

// KnownGenre reports whether the genre has its own template (i.e. would not
// fall back to fantasy).
func KnownGenre(genre string) bool {
	_, ok := templates[genre]
	return ok
}
