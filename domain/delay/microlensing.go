package delay

import "fmt"

// MicrolensingKind is the closed set of microlensing model families a fit can use
type MicrolensingKind int

const (
	// MicrolensingNone means the parameter is not applicable, not zero
	MicrolensingNone MicrolensingKind = iota
	MicrolensingSpline
	MicrolensingPolynomial
)

func (k MicrolensingKind) String() string {
	switch k {
	case MicrolensingNone:
		return "none"
	case MicrolensingSpline:
		return "splml"
	case MicrolensingPolynomial:
		return "polyml"
	default:
		return fmt.Sprintf("MicrolensingKind(%d)", int(k))
	}
}

// Microlensing describes the microlensing model of one accepted fit.
// Param is the raw token taken from the group name (e.g. the number of
// internal spline knots, or the polynomial degree).
type Microlensing struct {
	Kind  MicrolensingKind `json:"kind"`
	Param string           `json:"param,omitempty"`
}

// NoMicrolensing is the zero value, used when the group name carries no marker
var NoMicrolensing = Microlensing{Kind: MicrolensingNone}

// SplineMicrolensing builds a spline microlensing model
func SplineMicrolensing(param string) Microlensing {
	return Microlensing{Kind: MicrolensingSpline, Param: param}
}

// PolynomialMicrolensing builds a polynomial microlensing model
func PolynomialMicrolensing(param string) Microlensing {
	return Microlensing{Kind: MicrolensingPolynomial, Param: param}
}

// Token is the fragment that must appear in an archive name for the archive
// to belong to this model. An empty token matches every archive.
func (m Microlensing) Token() string {
	switch m.Kind {
	case MicrolensingSpline, MicrolensingPolynomial:
		return m.Param
	default:
		return ""
	}
}

func (m Microlensing) String() string {
	if m.Kind == MicrolensingNone {
		return m.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", m.Kind, m.Param)
}

// AcceptedFit is one concrete fit configuration kept by the upstream selection
type AcceptedFit struct {
	Knot         string       `json:"knot"`
	Microlensing Microlensing `json:"microlensing"`
}

func (f AcceptedFit) String() string {
	return fmt.Sprintf("knot=%s ml=%s", f.Knot, f.Microlensing)
}
