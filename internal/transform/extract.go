package transform

import (
	"strings"

	"github.com/recovery-atlas/facility-cli/internal/model"
)

// vocabRule maps free-text keywords onto one closed-vocabulary label.
type vocabRule struct {
	label    string
	keywords []string
}

// serviceRules map facility-type and service-code text onto the service
// vocabulary. Order is fixed so extraction is deterministic.
var serviceRules = []vocabRule{
	{model.ServiceResidential, []string{"residential", "inpatient", "24-hour", "24 hour"}},
	{model.ServiceOutpatient, []string{"outpatient", "intensive outpatient", "iop"}},
	{model.ServiceDetox, []string{"detox"}},
	{model.ServiceTransitional, []string{"transitional", "halfway", "sober living", "recovery housing"}},
	{model.ServiceMedicationAssisted, []string{"medication", "methadone", "buprenorphine", "suboxone", "naltrexone", "mat"}},
	{model.ServiceCoOccurring, []string{"co-occurring", "co occurring", "dual diagnosis", "mental health"}},
}

var insuranceRules = []vocabRule{
	{model.InsuranceMedicare, []string{"medicare"}},
	{model.InsuranceMedicaid, []string{"medicaid"}},
	{model.InsurancePrivate, []string{"private", "commercial"}},
	{model.InsuranceSelfPay, []string{"self-pay", "self pay", "self payment", "cash"}},
	{model.InsuranceMilitary, []string{"military", "tricare", "va "}},
	{model.InsuranceState, []string{"state-financed", "state financed", "state insurance"}},
}

var programRules = []vocabRule{
	{model.ProgramWomens, []string{"women"}},
	{model.ProgramMens, []string{"men only", "adult men", "men's program"}},
	{model.ProgramYouth, []string{"youth", "adolescent", "teen"}},
	{model.ProgramVeterans, []string{"veteran"}},
	{model.ProgramLGBTQ, []string{"lgbt", "lesbian", "gay", "bisexual", "transgender"}},
	{model.ProgramDualDiagnosis, []string{"dual diagnosis", "dual-diagnosis", "co-occurring"}},
}

// ExtractServices keyword-matches service text onto the service vocabulary.
// Services are never empty: unmatched text falls back to the generic
// treatment label so downstream filtering always has something to key on.
func ExtractServices(text string) []string {
	out := matchVocab(text, serviceRules)
	if len(out) == 0 {
		out = []string{model.ServiceTreatment}
	}
	return out
}

// ExtractInsurance keyword-matches payment-type text onto the insurance
// vocabulary. May be empty.
func ExtractInsurance(text string) []string {
	return matchVocab(text, insuranceRules)
}

// ExtractPrograms keyword-matches specialty text onto the program
// vocabulary. May be empty.
func ExtractPrograms(text string) []string {
	return matchVocab(text, programRules)
}

func matchVocab(text string, rules []vocabRule) []string {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return nil
	}

	var out []string
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				out = append(out, rule.label)
				break
			}
		}
	}
	return out
}
