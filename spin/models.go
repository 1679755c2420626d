package spin

import "fmt"

// FAD hyperfine parameters (Tesla).
const (
	fadN5AIso   = 523e-6
	fadN5AAniso = 700e-6

	fadN10AIso   = 189e-6
	fadN10AAniso = 250e-6

	// TrpH beta-proton HFCs (Tesla), approximately isotropic.
	trpHH1AIso = 0.71e-3
	trpHH2AIso = 1.07e-3
)

// HFCTensor couples one nucleus to one electron through a 3x3 hyperfine
// tensor A (Tesla).
type HFCTensor struct {
	Site     int // nuclear subsystem index (>= 2)
	Electron int // which electron (0 or 1) this nucleus couples to
	A        [3][3]float64
}

// AxialHFC builds an axial hyperfine tensor from the isotropic coupling
// aIso and the anisotropy aAniso = a_par - a_perp (both Tesla).
func AxialHFC(aIso, aAniso float64, site, electron int) HFCTensor {
	aPerp := aIso - aAniso/3.0
	aPar := aIso + 2.0*aAniso/3.0
	var a [3][3]float64
	a[0][0] = aPerp
	a[1][1] = aPerp
	a[2][2] = aPar
	return HFCTensor{Site: site, Electron: electron, A: a}
}

// Model specifies a radical-pair spin system: 2 electrons plus the
// nuclei carried by the hyperfine tensors, and an exchange coupling J
// (rad/s).
type Model struct {
	Name   string
	NSites int
	HFC    []HFCTensor
	J      float64
}

// ToyFADO2 is the [FAD O2] toy pair: 2 electrons + N5. Dimension 8.
func ToyFADO2() Model {
	return Model{
		Name:   "[FAD O2] toy (N5)",
		NSites: 3,
		HFC: []HFCTensor{
			AxialHFC(fadN5AIso, fadN5AAniso, 2, 0),
		},
	}
}

// ToyFADTrp is the [FAD TrpH] toy pair: 2 electrons + N5 + H1. Dimension 16.
func ToyFADTrp() Model {
	return Model{
		Name:   "[FAD TrpH] toy (N5 + H1)",
		NSites: 4,
		HFC: []HFCTensor{
			AxialHFC(fadN5AIso, fadN5AAniso, 2, 0),
			AxialHFC(trpHH1AIso, 0, 3, 1),
		},
	}
}

// IntermediateFADO2 is the [FAD O2] pair with N5 + N10. Dimension 16.
func IntermediateFADO2() Model {
	return Model{
		Name:   "[FAD O2] (N5 + N10)",
		NSites: 4,
		HFC: []HFCTensor{
			AxialHFC(fadN5AIso, fadN5AAniso, 2, 0),
			AxialHFC(fadN10AIso, fadN10AAniso, 3, 0),
		},
	}
}

// IntermediateFADTrp is the [FAD TrpH] pair with N5+N10 and H1+H2.
// Dimension 64; this is the expensive model.
func IntermediateFADTrp() Model {
	return Model{
		Name:   "[FAD TrpH] (N5+N10 + H1+H2)",
		NSites: 6,
		HFC: []HFCTensor{
			AxialHFC(fadN5AIso, fadN5AAniso, 2, 0),
			AxialHFC(fadN10AIso, fadN10AAniso, 3, 0),
			AxialHFC(trpHH1AIso, 0, 4, 1),
			AxialHFC(trpHH2AIso, 0, 5, 1),
		},
	}
}

// ModelByName returns a fresh Model value for a registered model name.
// There is no shared registry state; every call builds a new value.
func ModelByName(name string) (Model, error) {
	switch name {
	case "toy_fad_o2":
		return ToyFADO2(), nil
	case "toy_fad_trp":
		return ToyFADTrp(), nil
	case "intermediate_fad_o2":
		return IntermediateFADO2(), nil
	case "intermediate_fad_trp":
		return IntermediateFADTrp(), nil
	}
	return Model{}, fmt.Errorf("spin: unknown model %q (known: %v)", name, ModelNames())
}

// ModelNames lists the names accepted by ModelByName.
func ModelNames() []string {
	return []string{"toy_fad_o2", "toy_fad_trp", "intermediate_fad_o2", "intermediate_fad_trp"}
}
