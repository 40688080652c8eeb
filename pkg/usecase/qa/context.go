package qa

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hfguide/hfguide/pkg/model"
)

const (
	notProvided  = "Not provided"
	noneReported = "None reported"
)

// BuildContext renders the patient record into the grounding block handed to
// the generator. The rendering is deterministic: sections appear in a fixed
// order and every field is present, with explicit markers for absent values.
//
// The patient role sees demographics, basic vitals, symptoms, comorbidities,
// medications, and lifestyle. The clinician role additionally sees full
// vitals, labs, heart failure classification, ECG and echo findings, devices,
// and functional testing. A nil patient yields a short stand-alone marker.
func BuildContext(role model.Role, patient *model.PatientContext) string {
	if patient == nil {
		return "No patient record attached. Answer from the guideline passages alone."
	}

	w := &contextWriter{}

	w.section("Patient Profile")
	w.field("Name", patient.Name)
	w.field("Age", intVal(patient.Age, "years"))
	w.field("Sex", patient.Sex)
	w.field("Height", floatVal(patient.Height, "cm"))
	w.field("Weight", floatVal(patient.Weight, "kg"))
	w.field("BMI", floatVal(patient.BMI, ""))

	w.section("Vital Signs")
	w.field("Heart rate", intVal(patient.HeartRate, "bpm"))
	w.field("Blood pressure", bloodPressure(patient.SystolicBP, patient.DiastolicBP))
	if role == model.RoleClinician {
		w.field("Respiratory rate", intVal(patient.RespiratoryRate, "breaths/min"))
		w.field("Oxygen saturation", floatVal(patient.OxygenSaturation, "%"))
		w.field("Temperature", floatVal(patient.Temperature, "C"))
	}

	if role == model.RoleClinician {
		w.section("Heart Failure Classification")
		w.field("HF type", patient.HFType)
		w.field("LVEF", floatVal(patient.LVEF, "%"))
		w.field("NYHA class", patient.NYHAClass)
		w.field("BNP", floatVal(patient.BNP, "pg/mL"))

		w.section("Laboratory Values")
		w.field("Creatinine", floatVal(patient.Creatinine, "mg/dL"))
		w.field("Potassium", floatVal(patient.Potassium, "mmol/L"))
		w.field("Sodium", floatVal(patient.Sodium, "mmol/L"))
		w.field("Anemia status", patient.AnemiaStatus)
		w.field("Iron deficiency", boolVal(patient.IronIssue))
	}

	w.section("Symptoms")
	if len(patient.Symptoms) == 0 {
		w.line(noneReported)
	}
	for _, s := range patient.Symptoms {
		w.line(symptomLine(s))
	}
	w.field("Triggers", joinList(patient.SymptomTriggers))
	w.field("Daily impact", patient.DailyImpact)
	if patient.HasVolumeOverloadSigns() {
		w.field("Volume status", "signs of volume overload (swelling or rapid weight gain)")
	} else {
		w.field("Volume status", "no reported signs of volume overload")
	}

	w.section("Comorbidities")
	if len(patient.Comorbidities) == 0 {
		w.line(noneReported)
	}
	for _, c := range patient.Comorbidities {
		w.line("- " + c)
	}
	for _, d := range patient.ComorbidityDetails {
		w.field(d.Key, d.Value)
	}

	w.section("Cardiovascular History")
	events := presentEvents(patient.CVEvents)
	if len(events) == 0 {
		w.line(noneReported)
	}
	for _, e := range events {
		w.line("- " + e)
	}

	w.section("Medications")
	if len(patient.Medications) == 0 {
		w.line(noneReported)
	}
	for _, m := range patient.Medications {
		w.line("- " + m)
	}
	w.field("Other medications", patient.OtherMeds)

	w.section("Lifestyle")
	w.field("Alcohol", boolDetail(patient.Alcohol, patient.AlcoholFrequency))
	w.field("Smoking", smokingLine(patient))
	w.field("Physical activity", patient.Activity)

	if role == model.RoleClinician {
		w.section("ECG Findings")
		w.line(orMarker(patient.ECGFindings, notProvided))

		w.section("Echocardiography")
		if len(patient.EchoFindings) == 0 && patient.EchoOther == "" {
			w.line(notProvided)
		}
		for _, f := range patient.EchoFindings {
			w.line("- " + f)
		}
		if patient.EchoOther != "" {
			w.line("- " + patient.EchoOther)
		}

		w.section("Devices and Functional Testing")
		w.field("Implanted devices", joinList(patient.Devices))
		w.field("6-minute walk test", intVal(patient.WalkTest, "m"))
		w.field("Peak VO2", floatVal(patient.VO2Max, "mL/kg/min"))
		w.field("Follow-up plan", patient.FollowPlan)
	}

	return w.String()
}

// FormatPassages renders retrieval results as the numbered list placed after
// the patient block in the model prompt.
func FormatPassages(results []*model.RetrievalResult) string {
	if len(results) == 0 {
		return "No guideline passages retrieved."
	}

	var b strings.Builder
	for i, r := range results {
		label := "guideline text"
		if r.Kind == model.ChunkKindTable {
			label = "guideline table"
		}
		fmt.Fprintf(&b, "[%d] (%s) %s\n", i+1, label, r.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

type contextWriter struct {
	b strings.Builder
}

func (w *contextWriter) section(title string) {
	if w.b.Len() > 0 {
		w.b.WriteString("\n")
	}
	w.b.WriteString("== " + title + " ==\n")
}

func (w *contextWriter) field(label, value string) {
	w.b.WriteString(label + ": " + orMarker(value, notProvided) + "\n")
}

func (w *contextWriter) line(s string) {
	w.b.WriteString(s + "\n")
}

func (w *contextWriter) String() string {
	return strings.TrimRight(w.b.String(), "\n")
}

func orMarker(s, marker string) string {
	if strings.TrimSpace(s) == "" {
		return marker
	}
	return s
}

func intVal(v *int, unit string) string {
	if v == nil {
		return ""
	}
	return withUnit(strconv.Itoa(*v), unit)
}

func floatVal(v *float64, unit string) string {
	if v == nil {
		return ""
	}
	return withUnit(strconv.FormatFloat(*v, 'f', -1, 64), unit)
}

func withUnit(s, unit string) string {
	if unit == "" {
		return s
	}
	return s + " " + unit
}

func boolVal(v *bool) string {
	if v == nil {
		return ""
	}
	if *v {
		return "yes"
	}
	return "no"
}

func boolDetail(v *bool, detail string) string {
	s := boolVal(v)
	if s == "yes" && detail != "" {
		s += " (" + detail + ")"
	}
	return s
}

func smokingLine(p *model.PatientContext) string {
	s := boolVal(p.Smoking)
	if s != "yes" {
		return s
	}
	if p.SmokingPacks != nil && p.SmokingYears != nil {
		return fmt.Sprintf("yes (%s packs/day for %d years)",
			strconv.FormatFloat(*p.SmokingPacks, 'f', -1, 64), *p.SmokingYears)
	}
	return s
}

func bloodPressure(sys, dia *int) string {
	if sys == nil || dia == nil {
		return ""
	}
	return fmt.Sprintf("%d/%d mmHg", *sys, *dia)
}

func symptomLine(s model.Symptom) string {
	line := "- " + s.Name
	var qualifiers []string
	if s.Severity > 0 {
		qualifiers = append(qualifiers, fmt.Sprintf("severity %d/5", s.Severity))
	}
	if s.Duration != "" {
		qualifiers = append(qualifiers, "for "+s.Duration)
	}
	if len(qualifiers) > 0 {
		line += " (" + strings.Join(qualifiers, ", ") + ")"
	}
	return line
}

func joinList(items []string) string {
	return strings.Join(items, ", ")
}

func presentEvents(events []model.CVEvent) []string {
	var names []string
	for _, e := range events {
		if e.Present {
			names = append(names, e.Name)
		}
	}
	return names
}
