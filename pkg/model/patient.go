package model

import "strings"

// PatientID identifies a patient record in the record store.
type PatientID string

// Symptom is one reported symptom with severity and duration.
type Symptom struct {
	Name     string `firestore:"name" json:"name"`
	Category string `firestore:"category,omitempty" json:"category,omitempty"`
	Severity int    `firestore:"severity,omitempty" json:"severity,omitempty"` // 1-5
	Duration string `firestore:"duration,omitempty" json:"duration,omitempty"`
}

// ComorbidityDetail is a free-text qualifier for a comorbidity flag,
// e.g. key "eGFR Range", value "30-59 (Moderate)".
type ComorbidityDetail struct {
	Key   string `firestore:"key" json:"key"`
	Value string `firestore:"value" json:"value"`
}

// CVEvent is one item of cardiovascular event history.
type CVEvent struct {
	Name    string `firestore:"name" json:"name"`
	Present bool   `firestore:"present" json:"present"`
}

// PatientContext carries the clinical fields the QA pipeline may ground an
// answer on. Every field is optional: the context assembler renders explicit
// "not provided" markers for absent values instead of failing. The struct is
// produced by the record store and treated as read-only by the pipeline.
type PatientContext struct {
	// Demographics
	Name   string   `firestore:"name,omitempty" json:"name,omitempty"`
	Age    *int     `firestore:"age,omitempty" json:"age,omitempty"`
	Sex    string   `firestore:"sex,omitempty" json:"sex,omitempty"`
	Height *float64 `firestore:"height,omitempty" json:"height,omitempty"` // cm
	Weight *float64 `firestore:"weight,omitempty" json:"weight,omitempty"` // kg
	BMI    *float64 `firestore:"bmi,omitempty" json:"bmi,omitempty"`

	// Vitals
	HeartRate        *int     `firestore:"heart_rate,omitempty" json:"heart_rate,omitempty"`
	SystolicBP       *int     `firestore:"systolic_bp,omitempty" json:"systolic_bp,omitempty"`
	DiastolicBP      *int     `firestore:"diastolic_bp,omitempty" json:"diastolic_bp,omitempty"`
	RespiratoryRate  *int     `firestore:"respiratory_rate,omitempty" json:"respiratory_rate,omitempty"`
	OxygenSaturation *float64 `firestore:"oxygen_saturation,omitempty" json:"oxygen_saturation,omitempty"`
	Temperature      *float64 `firestore:"temperature,omitempty" json:"temperature,omitempty"`

	// Clinical status
	HFType    string   `firestore:"hf_type,omitempty" json:"hf_type,omitempty"` // HFrEF / HFpEF / HFmrEF
	LVEF      *float64 `firestore:"lvef,omitempty" json:"lvef,omitempty"`
	NYHAClass string   `firestore:"nyha,omitempty" json:"nyha,omitempty"`
	BNP       *float64 `firestore:"bnp,omitempty" json:"bnp,omitempty"`

	// Labs
	Creatinine   *float64 `firestore:"creatinine,omitempty" json:"creatinine,omitempty"`
	Potassium    *float64 `firestore:"potassium,omitempty" json:"potassium,omitempty"`
	Sodium       *float64 `firestore:"sodium,omitempty" json:"sodium,omitempty"`
	AnemiaStatus string   `firestore:"anemia_status,omitempty" json:"anemia_status,omitempty"`
	IronIssue    *bool    `firestore:"iron_issue,omitempty" json:"iron_issue,omitempty"` // ferritin <100 or TSAT <20%

	// Symptoms and history
	Symptoms           []Symptom           `firestore:"symptoms,omitempty" json:"symptoms,omitempty"`
	SymptomTriggers    []string            `firestore:"symptom_triggers,omitempty" json:"symptom_triggers,omitempty"`
	DailyImpact        string              `firestore:"daily_impact,omitempty" json:"daily_impact,omitempty"`
	Comorbidities      []string            `firestore:"comorbidities,omitempty" json:"comorbidities,omitempty"`
	ComorbidityDetails []ComorbidityDetail `firestore:"comorbidity_details,omitempty" json:"comorbidity_details,omitempty"`
	CVEvents           []CVEvent           `firestore:"cv_events,omitempty" json:"cv_events,omitempty"`

	// Treatment
	Medications []string `firestore:"medications,omitempty" json:"medications,omitempty"`
	OtherMeds   string   `firestore:"other_meds,omitempty" json:"other_meds,omitempty"`

	// Lifestyle
	Alcohol          *bool    `firestore:"alcohol,omitempty" json:"alcohol,omitempty"`
	AlcoholFrequency string   `firestore:"alcohol_frequency,omitempty" json:"alcohol_frequency,omitempty"`
	Smoking          *bool    `firestore:"smoking,omitempty" json:"smoking,omitempty"`
	SmokingPacks     *float64 `firestore:"smoking_packs,omitempty" json:"smoking_packs,omitempty"`
	SmokingYears     *int     `firestore:"smoking_years,omitempty" json:"smoking_years,omitempty"`
	Activity         string   `firestore:"activity,omitempty" json:"activity,omitempty"`

	// Clinician-only detail: never rendered for the patient role.
	ECGFindings  string   `firestore:"ecg,omitempty" json:"ecg,omitempty"`
	EchoFindings []string `firestore:"echo,omitempty" json:"echo,omitempty"`
	EchoOther    string   `firestore:"echo_other,omitempty" json:"echo_other,omitempty"`
	Devices      []string `firestore:"devices,omitempty" json:"devices,omitempty"` // ICD / CRT / Pacemaker
	WalkTest     *int     `firestore:"walk_test,omitempty" json:"walk_test,omitempty"`
	VO2Max       *float64 `firestore:"vo2_max,omitempty" json:"vo2_max,omitempty"`
	FollowPlan   string   `firestore:"follow_plan,omitempty" json:"follow_plan,omitempty"`
}

// volumeOverloadSignals are symptom names that suggest congestion. Matching is
// substring-based because form wording varies between the patient and
// clinician intake paths.
var volumeOverloadSignals = []string{
	"edema",
	"swelling",
	"weight gain",
}

// HasVolumeOverloadSigns reports whether the recorded symptoms suggest volume
// overload (peripheral edema or rapid weight gain). The patient-role fluid
// intake advice depends on this signal being visible in the context.
func (p *PatientContext) HasVolumeOverloadSigns() bool {
	for _, s := range p.Symptoms {
		name := strings.ToLower(s.Name)
		for _, sig := range volumeOverloadSignals {
			if strings.Contains(name, sig) {
				return true
			}
		}
	}
	return false
}
