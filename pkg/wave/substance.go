package wave

// SubstanceKind discriminates the Substance union carried as a wave's
// body.
type SubstanceKind int

const (
	SubstanceEmpty SubstanceKind = iota
	SubstanceText
	SubstanceBin
	SubstanceErrors
	SubstancePoint
	SubstanceSurface
	SubstanceCommand
	SubstanceRawCommand
	SubstanceHyper
	SubstanceJson
)

func (k SubstanceKind) String() string {
	switch k {
	case SubstanceEmpty:
		return "Empty"
	case SubstanceText:
		return "Text"
	case SubstanceBin:
		return "Bin"
	case SubstanceErrors:
		return "Errors"
	case SubstancePoint:
		return "Point"
	case SubstanceSurface:
		return "Surface"
	case SubstanceCommand:
		return "Command"
	case SubstanceRawCommand:
		return "RawCommand"
	case SubstanceHyper:
		return "Hyper"
	case SubstanceJson:
		return "Json"
	default:
		return "Unknown"
	}
}

// HyperOp names the internal cluster-management operations carried by a
// SubstanceHyper payload.
type HyperOp string

const (
	HyperAssign HyperOp = "Assign"
	HyperGreet  HyperOp = "Greet"
)

// HyperSubstance is the payload of internal Hyp-class waves, e.g. the
// registry instructing a star to host a particle.
type HyperSubstance struct {
	Op      HyperOp
	Point   string // canonical point string this op concerns
	Payload map[string]string
}

// Substance is a typed, tagged payload. Exactly one of the typed fields
// is meaningful, selected by Kind; Raw carries the Bin payload.
type Substance struct {
	Kind    SubstanceKind
	Text    string
	Raw     []byte
	Errs    []string
	Point   string
	Surface string
	Command string
	Hyper   *HyperSubstance
	Json    []byte
}

func Empty() Substance                { return Substance{Kind: SubstanceEmpty} }
func TextSubstance(s string) Substance { return Substance{Kind: SubstanceText, Text: s} }
func Bin(b []byte) Substance          { return Substance{Kind: SubstanceBin, Raw: b} }
func Errors(msgs ...string) Substance { return Substance{Kind: SubstanceErrors, Errs: msgs} }
func PointSubstance(p string) Substance { return Substance{Kind: SubstancePoint, Point: p} }
func SurfaceSubstance(s string) Substance { return Substance{Kind: SubstanceSurface, Surface: s} }
func Command(cmd string) Substance     { return Substance{Kind: SubstanceCommand, Command: cmd} }
func RawCommand(cmd string) Substance  { return Substance{Kind: SubstanceRawCommand, Command: cmd} }
func Hyper(h HyperSubstance) Substance { return Substance{Kind: SubstanceHyper, Hyper: &h} }
func JsonSubstance(b []byte) Substance { return Substance{Kind: SubstanceJson, Json: b} }

func (s Substance) IsEmpty() bool { return s.Kind == SubstanceEmpty }

// ToText extracts the Text field, failing if Kind != SubstanceText.
func (s Substance) ToText() (string, bool) {
	if s.Kind != SubstanceText {
		return "", false
	}
	return s.Text, true
}

// ToErrors extracts the Errs field, failing if Kind != SubstanceErrors.
func (s Substance) ToErrors() ([]string, bool) {
	if s.Kind != SubstanceErrors {
		return nil, false
	}
	return s.Errs, true
}

// ToHyper extracts the Hyper field, failing if Kind != SubstanceHyper.
func (s Substance) ToHyper() (HyperSubstance, bool) {
	if s.Kind != SubstanceHyper || s.Hyper == nil {
		return HyperSubstance{}, false
	}
	return *s.Hyper, true
}
