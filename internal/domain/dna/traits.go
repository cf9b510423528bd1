package dna

// traitAxis maps normalized trait labels to axes. Many-to-one.
var traitAxis = map[string]Axis{
	"analytical":     AxisLogic,
	"logical":        AxisLogic,
	"rational":       AxisLogic,
	"strategic":      AxisLogic,
	"curious":        AxisLogic,
	"objective":      AxisLogic,
	"problem-solver": AxisLogic,
	"skeptical":      AxisLogic,
	"methodical":     AxisLogic,
	"thinker":        AxisLogic,

	"empathetic":    AxisEmotion,
	"caring":        AxisEmotion,
	"sensitive":     AxisEmotion,
	"romantic":      AxisEmotion,
	"compassionate": AxisEmotion,
	"affectionate":  AxisEmotion,
	"intuitive":     AxisEmotion,
	"nurturing":     AxisEmotion,
	"expressive":    AxisEmotion,
	"loyal":         AxisEmotion,

	"adventurous":  AxisEnergy,
	"energetic":    AxisEnergy,
	"outgoing":     AxisEnergy,
	"spontaneous":  AxisEnergy,
	"active":       AxisEnergy,
	"social":       AxisEnergy,
	"extroverted":  AxisEnergy,
	"bold":         AxisEnergy,
	"playful":      AxisEnergy,
	"enthusiastic": AxisEnergy,

	"creative":       AxisCreativity,
	"artistic":       AxisCreativity,
	"imaginative":    AxisCreativity,
	"innovative":     AxisCreativity,
	"original":       AxisCreativity,
	"dreamer":        AxisCreativity,
	"musical":        AxisCreativity,
	"inventive":      AxisCreativity,
	"visionary":      AxisCreativity,
	"unconventional": AxisCreativity,

	"disciplined": AxisDiscipline,
	"organized":   AxisDiscipline,
	"ambitious":   AxisDiscipline,
	"reliable":    AxisDiscipline,
	"punctual":    AxisDiscipline,
	"focused":     AxisDiscipline,
	"responsible": AxisDiscipline,
	"driven":      AxisDiscipline,
	"structured":  AxisDiscipline,
	"persistent":  AxisDiscipline,
}
