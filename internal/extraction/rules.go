package extraction

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
)

const DefaultQualifierWindow = 60

type CriticalRule struct {
	Severity          Severity `yaml:"severity"`
	Reason            string   `yaml:"reason"`
	RequiresQualifier bool     `yaml:"requiresQualifier"`
}

type DifferentialRule struct {
	Condition  string  `yaml:"condition"`
	Confidence float64 `yaml:"confidence"`
	Reasoning  string  `yaml:"reasoning"`
}

// RuleSet is the data behind critical-finding flags and differential hints.
// Keys are normalized terms. The associations are illustrative heuristics
// and are not clinically validated.
type RuleSet struct {
	CriticalFindings map[string]CriticalRule       `yaml:"criticalFindings"`
	Differentials    map[string][]DifferentialRule `yaml:"differentials"`
	QualifierWindow  int                           `yaml:"qualifierWindow"`
}

var qualifierPattern = regexp.MustCompile(`\b(?:elevated|high|critical|positive|raised|increased|abnormal)\b|\d+(?:\.\d+)?`)

func DefaultRuleSet() RuleSet {
	return RuleSet{
		QualifierWindow: DefaultQualifierWindow,
		CriticalFindings: map[string]CriticalRule{
			"myocardial infarction": {SeverityCritical, "Possible acute coronary syndrome; requires immediate evaluation", false},
			"heart attack":          {SeverityCritical, "Possible acute coronary syndrome; requires immediate evaluation", false},
			"stroke":                {SeverityCritical, "Possible cerebrovascular event; time-critical assessment", false},
			"sepsis":                {SeverityCritical, "Systemic infection with risk of organ failure", false},
			"pulmonary embolism":    {SeverityCritical, "Possible obstruction of pulmonary circulation", false},
			"troponin":              {SeverityCritical, "Troponin reported with a value or abnormal qualifier suggests myocardial injury", true},
			"chest pain":            {SeverityHigh, "Chest pain warrants cardiac work-up", false},
			"shortness of breath":   {SeverityHigh, "Respiratory compromise should be assessed", false},
			"syncope":               {SeverityHigh, "Loss of consciousness may indicate arrhythmia", false},
			"heart failure":         {SeverityHigh, "Cardiac decompensation risk", false},
			"atrial fibrillation":   {SeverityHigh, "Arrhythmia with thromboembolic risk", false},
			"lactate":               {SeverityHigh, "Lactate reported with a value or abnormal qualifier may indicate hypoperfusion", true},
			"potassium":             {SeverityHigh, "Potassium reported with an abnormal qualifier may cause arrhythmia", true},
			"d-dimer":               {SeverityModerate, "D-dimer reported with a value or abnormal qualifier; consider thrombosis", true},
			"bnp":                   {SeverityModerate, "BNP reported with a value or abnormal qualifier; consider heart failure", true},
			"hypertension":          {SeverityModerate, "Uncontrolled blood pressure increases cardiovascular risk", false},
		},
		Differentials: map[string][]DifferentialRule{
			"chest pain": {
				{"Myocardial Infarction", 0.85, "Chest pain is a cardinal symptom of acute coronary syndrome"},
				{"Angina", 0.75, "Chest pain consistent with myocardial ischemia"},
				{"Pulmonary Embolism", 0.55, "Pleuritic chest pain can accompany pulmonary embolism"},
				{"Gastroesophageal Reflux Disease", 0.45, "Reflux commonly presents as retrosternal pain"},
			},
			"shortness of breath": {
				{"Heart Failure", 0.70, "Dyspnea is common in cardiac decompensation"},
				{"Asthma", 0.65, "Airway obstruction causes breathlessness"},
				{"Pulmonary Embolism", 0.60, "Sudden dyspnea may indicate pulmonary embolism"},
				{"Chronic Obstructive Pulmonary Disease", 0.60, "Progressive dyspnea is typical of COPD"},
				{"Pneumonia", 0.55, "Infection can impair gas exchange"},
			},
			"dyspnea": {
				{"Heart Failure", 0.70, "Dyspnea is common in cardiac decompensation"},
				{"Asthma", 0.65, "Airway obstruction causes breathlessness"},
				{"Pulmonary Embolism", 0.60, "Sudden dyspnea may indicate pulmonary embolism"},
			},
			"headache": {
				{"Tension Headache", 0.70, "Most common primary headache"},
				{"Migraine", 0.65, "Recurrent headache pattern"},
				{"Hypertension", 0.40, "Severe hypertension can cause headache"},
				{"Meningitis", 0.25, "Headache with fever warrants exclusion of meningitis"},
			},
			"fever": {
				{"Viral Infection", 0.70, "Fever is most often viral in origin"},
				{"Pneumonia", 0.55, "Fever with respiratory focus"},
				{"Urinary Tract Infection", 0.45, "Common bacterial source of fever"},
				{"Sepsis", 0.40, "Fever may herald systemic infection"},
			},
			"cough": {
				{"Upper Respiratory Infection", 0.70, "Cough is typical of upper airway infection"},
				{"Bronchitis", 0.60, "Inflammation of the bronchi causes cough"},
				{"Pneumonia", 0.55, "Productive cough may indicate pneumonia"},
				{"Asthma", 0.45, "Cough variant asthma"},
			},
			"nausea": {
				{"Gastroenteritis", 0.65, "Nausea is common in gastrointestinal infection"},
				{"Gastroesophageal Reflux Disease", 0.45, "Reflux may cause nausea"},
				{"Myocardial Infarction", 0.30, "Nausea can accompany atypical coronary presentations"},
			},
			"vomiting": {
				{"Gastroenteritis", 0.65, "Vomiting is common in gastrointestinal infection"},
				{"Bowel Obstruction", 0.35, "Persistent vomiting may indicate obstruction"},
			},
			"abdominal pain": {
				{"Gastroenteritis", 0.55, "Diffuse abdominal pain with infection"},
				{"Appendicitis", 0.50, "Localized abdominal pain may indicate appendicitis"},
				{"Cholecystitis", 0.45, "Right upper quadrant pain"},
				{"Pancreatitis", 0.40, "Epigastric pain radiating to the back"},
			},
			"palpitations": {
				{"Atrial Fibrillation", 0.60, "Irregular palpitations suggest arrhythmia"},
				{"Anxiety", 0.50, "Palpitations are common with anxiety"},
				{"Hyperthyroidism", 0.40, "Thyroid excess increases heart rate"},
			},
			"dizziness": {
				{"Vertigo", 0.55, "Vestibular causes of dizziness"},
				{"Hypotension", 0.50, "Low blood pressure causes light-headedness"},
				{"Dehydration", 0.45, "Volume depletion causes dizziness"},
			},
			"fatigue": {
				{"Anemia", 0.55, "Reduced oxygen carrying capacity causes fatigue"},
				{"Hypothyroidism", 0.50, "Thyroid deficiency causes fatigue"},
				{"Depression", 0.40, "Fatigue is a common depressive symptom"},
			},
			"syncope": {
				{"Vasovagal Syncope", 0.60, "Most common cause of transient loss of consciousness"},
				{"Cardiac Arrhythmia", 0.50, "Arrhythmia can cause syncope"},
			},
		},
	}
}

// LoadRuleSet reads a YAML rule file and merges it over the defaults. Keys
// in the file replace the default entry for the same term.
func LoadRuleSet(path string) (RuleSet, error) {
	rules := DefaultRuleSet()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("failed to read rules file: %w", err)
	}

	var overlay RuleSet
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return RuleSet{}, fmt.Errorf("failed to parse rules file: %w", err)
	}

	for term, rule := range overlay.CriticalFindings {
		rules.CriticalFindings[terms.Normalize(term)] = rule
	}
	for term, list := range overlay.Differentials {
		rules.Differentials[terms.Normalize(term)] = list
	}
	if overlay.QualifierWindow > 0 {
		rules.QualifierWindow = overlay.QualifierWindow
	}

	if err := rules.Validate(); err != nil {
		return RuleSet{}, err
	}
	return rules, nil
}

func (r RuleSet) Validate() error {
	for term, rule := range r.CriticalFindings {
		if !rule.Severity.IsValid() {
			return fmt.Errorf("critical rule %q has invalid severity %q", term, rule.Severity)
		}
	}
	for term, list := range r.Differentials {
		for _, d := range list {
			if d.Condition == "" {
				return fmt.Errorf("differential rule for %q has empty condition", term)
			}
			if d.Confidence < 0 || d.Confidence > 1 {
				return fmt.Errorf("differential rule %q -> %q has confidence %v outside [0,1]", term, d.Condition, d.Confidence)
			}
		}
	}
	return nil
}
