package sources

import "github.com/AmartyaKumar11/X-NOSIS/internal/terms"

const (
	symptom    = terms.CategorySymptom
	condition  = terms.CategoryCondition
	medication = terms.CategoryMedication
	vital      = terms.CategoryVitalSigns
	lab        = terms.CategoryLabValues
	anatomy    = terms.CategoryAnatomy
	procedure  = terms.CategoryProcedure
	allergy    = terms.CategoryAllergy
	adverse    = terms.CategoryAdverseEvent
	clinical   = terms.CategoryClinical
	finding    = terms.CategoryFinding
	specialty  = terms.CategorySpecialty
)

// CuratedLists returns the built-in vocabularies. Abbreviation, common and
// reference lists carry the expansion or reference range as ConceptID.
func CuratedLists() []StaticList {
	return []StaticList{
		{
			Source:     "ICD-10",
			Confidence: 0.94,
			Entries: []StaticEntry{
				{"tuberculosis", condition, "A15"},
				{"pneumonia", condition, "J18"},
				{"influenza", condition, "J11"},
				{"covid-19", condition, "U07.1"},
				{"sepsis", condition, "A41"},
				{"meningitis", condition, "G03"},
				{"hepatitis", condition, "K75"},
				{"hiv", condition, "B20"},
				{"malaria", condition, "B54"},
				{"myocardial infarction", condition, "I21"},
				{"heart failure", condition, "I50"},
				{"atrial fibrillation", condition, "I48"},
				{"stroke", condition, "I64"},
				{"hypertension", condition, "I10"},
				{"angina", condition, "I20"},
				{"cardiomyopathy", condition, "I42"},
				{"asthma", condition, "J45"},
				{"copd", condition, "J44"},
				{"pulmonary embolism", condition, "I26"},
				{"pneumothorax", condition, "J93"},
				{"bronchitis", condition, "J40"},
				{"diabetes mellitus", condition, "E11"},
				{"hypothyroidism", condition, "E03"},
				{"hyperthyroidism", condition, "E05"},
				{"diabetes type 1", condition, "E10"},
				{"diabetes type 2", condition, "E11"},
				{"epilepsy", condition, "G40"},
				{"migraine", condition, "G43"},
				{"parkinson disease", condition, "G20"},
				{"alzheimer disease", condition, "G30"},
				{"multiple sclerosis", condition, "G35"},
				{"depression", condition, "F32"},
				{"anxiety", condition, "F41"},
				{"bipolar disorder", condition, "F31"},
				{"schizophrenia", condition, "F20"},
				{"ptsd", condition, "F43.1"},
				{"gastritis", condition, "K29"},
				{"peptic ulcer", condition, "K27"},
				{"crohn disease", condition, "K50"},
				{"ulcerative colitis", condition, "K51"},
				{"cirrhosis", condition, "K74"},
				{"osteoarthritis", condition, "M19"},
				{"rheumatoid arthritis", condition, "M06"},
				{"osteoporosis", condition, "M81"},
				{"fibromyalgia", condition, "M79.3"},
				{"cancer", condition, "C80"},
				{"tumor", condition, "D49"},
				{"lung cancer", condition, "C78.0"},
				{"breast cancer", condition, "C50"},
				{"prostate cancer", condition, "C61"},
				{"colon cancer", condition, "C18"},
				{"leukemia", condition, "C95"},
				{"lymphoma", condition, "C85"},
			},
		},
		{
			Source:     "ICD-11",
			Confidence: 0.94,
			Entries: []StaticEntry{
				{"post covid-19 condition", condition, "RA02"},
				{"long covid", condition, "RA02"},
				{"essential hypertension", condition, "BA00"},
				{"type 2 diabetes mellitus", condition, "5A11"},
				{"type 1 diabetes mellitus", condition, "5A10"},
				{"acute myocardial infarction", condition, "BA41"},
				{"chronic kidney disease", condition, "GB61"},
				{"iron deficiency anaemia", condition, "3A00"},
				{"gaming disorder", condition, "6C51"},
			},
		},
		{
			Source:     "HPO",
			Confidence: 0.94,
			Entries: []StaticEntry{
				{"chest pain", symptom, "HP:0100749"},
				{"shortness of breath", symptom, "HP:0002094"},
				{"headache", symptom, "HP:0002315"},
				{"nausea", symptom, "HP:0002018"},
				{"vomiting", symptom, "HP:0002013"},
				{"dizziness", symptom, "HP:0002321"},
				{"fatigue", symptom, "HP:0012378"},
				{"fever", symptom, "HP:0001945"},
				{"cough", symptom, "HP:0012735"},
				{"abdominal pain", symptom, "HP:0002027"},
				{"back pain", symptom, "HP:0003418"},
				{"joint pain", symptom, "HP:0002829"},
				{"muscle weakness", symptom, "HP:0001324"},
				{"seizure", symptom, "HP:0001250"},
				{"confusion", symptom, "HP:0001289"},
				{"memory loss", symptom, "HP:0002354"},
				{"blurred vision", symptom, "HP:0000622"},
				{"hearing loss", symptom, "HP:0000365"},
				{"rash", symptom, "HP:0000988"},
				{"swelling", symptom, "HP:0000969"},
				{"numbness", symptom, "HP:0003401"},
				{"tingling", symptom, "HP:0003401"},
				{"palpitations", symptom, "HP:0001962"},
				{"night sweats", symptom, "HP:0000989"},
				{"weight loss", symptom, "HP:0001824"},
				{"weight gain", symptom, "HP:0004324"},
				{"loss of appetite", symptom, "HP:0002039"},
				{"difficulty swallowing", symptom, "HP:0002015"},
				{"constipation", symptom, "HP:0002019"},
				{"diarrhea", symptom, "HP:0002014"},
				{"wheezing", symptom, "HP:0030828"},
				{"difficulty breathing", symptom, "HP:0002094"},
				{"chest tightness", symptom, "HP:0031352"},
				{"irregular heartbeat", symptom, "HP:0011675"},
				{"tremor", symptom, "HP:0001337"},
				{"syncope", symptom, "HP:0001279"},
			},
		},
		{
			Source:     "SNOMED-CT",
			Confidence: 0.96,
			Entries: []StaticEntry{
				{"appendectomy", procedure, "80146002"},
				{"cholecystectomy", procedure, "38102005"},
				{"coronary angioplasty", procedure, "11101003"},
				{"hip replacement", procedure, "52734007"},
				{"knee replacement", procedure, "609588000"},
				{"cataract surgery", procedure, "54885007"},
				{"tonsillectomy", procedure, "173422009"},
				{"hysterectomy", procedure, "236886002"},
				{"mastectomy", procedure, "172043006"},
				{"prostatectomy", procedure, "176258007"},
				{"myocardium", anatomy, "74281007"},
				{"pericardium", anatomy, "76848001"},
				{"endocardium", anatomy, "27878003"},
				{"aorta", anatomy, "15825003"},
				{"pulmonary artery", anatomy, "81040000"},
				{"coronary artery", anatomy, "41801008"},
				{"cerebrum", anatomy, "83678007"},
				{"cerebellum", anatomy, "113305005"},
				{"brainstem", anatomy, "15926001"},
				{"spinal cord", anatomy, "2748008"},
			},
		},
		{
			Source:     "RxNorm",
			Confidence: 0.95,
			Entries: []StaticEntry{
				{"acetaminophen", medication, "161"},
				{"ibuprofen", medication, "5640"},
				{"aspirin", medication, "1191"},
				{"metformin", medication, "6809"},
				{"lisinopril", medication, "29046"},
				{"atorvastatin", medication, "83367"},
				{"amlodipine", medication, "17767"},
				{"metoprolol", medication, "6918"},
				{"omeprazole", medication, "7646"},
				{"levothyroxine", medication, "10582"},
				{"warfarin", medication, "11289"},
				{"insulin", medication, "5856"},
				{"prednisone", medication, "8640"},
				{"albuterol", medication, "435"},
				{"furosemide", medication, "4603"},
				{"gabapentin", medication, "25480"},
				{"tramadol", medication, "10689"},
				{"morphine", medication, "7052"},
				{"oxycodone", medication, "7804"},
				{"amoxicillin", medication, "723"},
				{"heparin", medication, "5224"},
				{"clopidogrel", medication, "32968"},
				{"nitroglycerin", medication, "4917"},
			},
		},
		{
			Source:     "UMLS",
			Confidence: 0.93,
			Entries: []StaticEntry{
				{"myocardial infarction", condition, "C0027051"},
				{"cerebrovascular accident", condition, "C0038454"},
				{"chronic obstructive pulmonary disease", condition, "C0024117"},
				{"diabetes mellitus", condition, "C0011849"},
				{"hypertension", condition, "C0020538"},
				{"pneumonia", condition, "C0032285"},
				{"sepsis", condition, "C0243026"},
				{"heart failure", condition, "C0018801"},
				{"atrial fibrillation", condition, "C0004238"},
				{"pulmonary embolism", condition, "C0034065"},
				{"computed tomography", procedure, "C0040405"},
				{"magnetic resonance imaging", procedure, "C0024485"},
				{"electrocardiogram", procedure, "C0013798"},
				{"echocardiogram", procedure, "C0013516"},
				{"chest x-ray", procedure, "C0039985"},
				{"blood test", procedure, "C0018941"},
				{"urine test", procedure, "C0042014"},
				{"biopsy", procedure, "C0005558"},
				{"colonoscopy", procedure, "C0009378"},
				{"endoscopy", procedure, "C0014245"},
				{"myocardium", anatomy, "C0027061"},
				{"pulmonary", anatomy, "C0024109"},
				{"hepatic", anatomy, "C0205054"},
				{"renal", anatomy, "C0205065"},
				{"cerebral", anatomy, "C0007874"},
				{"cardiac", anatomy, "C0018787"},
				{"gastric", anatomy, "C0017119"},
				{"thoracic", anatomy, "C0817096"},
				{"abdominal", anatomy, "C0000726"},
				{"pelvic", anatomy, "C0030797"},
			},
		},
		{
			Source:     "MedDRA",
			Confidence: 0.92,
			Entries: []StaticEntry{
				{"drug rash", adverse, "10013968"},
				{"drug fever", adverse, "10013946"},
				{"anaphylaxis", adverse, "10002198"},
				{"stevens-johnson syndrome", adverse, "10042033"},
				{"hepatotoxicity", adverse, "10019851"},
				{"nephrotoxicity", adverse, "10029104"},
				{"cardiotoxicity", adverse, "10007554"},
				{"neurotoxicity", adverse, "10029350"},
				{"bone marrow suppression", adverse, "10005687"},
				{"thrombocytopenia", adverse, "10043554"},
				{"urticaria", adverse, "10046735"},
				{"angioedema", adverse, "10002424"},
				{"bronchospasm", adverse, "10006482"},
				{"contact dermatitis", adverse, "10010741"},
				{"serotonin syndrome", adverse, "10040108"},
				{"anticholinergic toxicity", adverse, "10002748"},
				{"bleeding", adverse, "10005103"},
				{"hypoglycemia", adverse, "10020993"},
				{"hyperkalemia", adverse, "10020646"},
				{"hyponatremia", adverse, "10021036"},
			},
		},
		{
			Source:     "LOINC",
			Confidence: 0.95,
			Entries: []StaticEntry{
				{"glucose", lab, "33747-0"},
				{"cholesterol", lab, "2093-3"},
				{"triglycerides", lab, "2571-8"},
				{"hdl cholesterol", lab, "2085-9"},
				{"ldl cholesterol", lab, "18262-6"},
				{"hemoglobin", lab, "718-7"},
				{"hematocrit", lab, "4544-3"},
				{"white blood cell count", lab, "6690-2"},
				{"platelet count", lab, "777-3"},
				{"creatinine", lab, "2160-0"},
				{"blood urea nitrogen", lab, "6299-2"},
				{"sodium", lab, "2951-2"},
				{"potassium", lab, "2823-3"},
				{"chloride", lab, "2075-0"},
				{"carbon dioxide", lab, "2028-9"},
				{"ast", lab, "1920-8"},
				{"alt", lab, "1742-6"},
				{"bilirubin", lab, "1975-2"},
				{"albumin", lab, "1751-7"},
				{"troponin", lab, "6598-7"},
				{"ck-mb", lab, "13969-1"},
				{"bnp", lab, "30934-4"},
				{"tsh", lab, "3016-3"},
				{"free t4", lab, "3024-7"},
				{"free t3", lab, "3051-0"},
				{"hba1c", lab, "4548-4"},
				{"microalbumin", lab, "14957-5"},
				{"inr", lab, "34714-6"},
				{"ptt", lab, "3173-2"},
				{"vitamin d", lab, "14635-7"},
				{"vitamin b12", lab, "2132-9"},
				{"folate", lab, "2284-8"},
				{"c-reactive protein", lab, "1988-5"},
				{"esr", lab, "4537-7"},
				{"psa", lab, "2857-1"},
				{"cea", lab, "2039-6"},
				{"ca 19-9", lab, "24108-3"},
				{"ca 125", lab, "10334-1"},
				{"afp", lab, "1834-1"},
				{"blood pressure", vital, "85354-9"},
				{"heart rate", vital, "8867-4"},
				{"respiratory rate", vital, "9279-1"},
				{"body temperature", vital, "8310-5"},
				{"oxygen saturation", vital, "2708-6"},
				{"body weight", vital, "29463-7"},
				{"body height", vital, "8302-2"},
				{"body mass index", vital, "39156-5"},
			},
		},
		{
			Source:     "Medical-Abbrev",
			Confidence: 0.90,
			Entries: []StaticEntry{
				{"temp", vital, "temperature"},
				{"o2 sat", vital, "oxygen saturation"},
				{"spo2", vital, "oxygen saturation"},
				{"hgb", lab, "hemoglobin"},
				{"hct", lab, "hematocrit"},
				{"wbc", lab, "white blood cell"},
				{"rbc", lab, "red blood cell"},
				{"plt", lab, "platelet"},
				{"bun", lab, "blood urea nitrogen"},
				{"creat", lab, "creatinine"},
				{"glu", lab, "glucose"},
				{"chol", lab, "cholesterol"},
				{"trig", lab, "triglycerides"},
				{"hba1c", lab, "hemoglobin a1c"},
				{"tsh", lab, "thyroid stimulating hormone"},
				{"ekg", procedure, "electrocardiogram"},
				{"ecg", procedure, "electrocardiogram"},
				{"echo", procedure, "echocardiogram"},
				{"mri", procedure, "magnetic resonance imaging"},
				{"cxr", procedure, "chest x-ray"},
				{"eeg", procedure, "electroencephalogram"},
				{"emg", procedure, "electromyogram"},
				{"chf", condition, "congestive heart failure"},
				{"copd", condition, "chronic obstructive pulmonary disease"},
				{"htn", condition, "hypertension"},
				{"cad", condition, "coronary artery disease"},
				{"dvt", condition, "deep vein thrombosis"},
				{"uti", condition, "urinary tract infection"},
				{"uri", condition, "upper respiratory infection"},
				{"bp", vital, "blood pressure"},
				{"hr", vital, "heart rate"},
				{"mi", condition, "myocardial infarction"},
				{"pe", condition, "pulmonary embolism"},
			},
		},
		{
			Source:     "Medical-Common",
			Confidence: 0.88,
			Entries: []StaticEntry{
				{"chief complaint", clinical, "CC"},
				{"history of present illness", clinical, "HPI"},
				{"past medical history", clinical, "PMH"},
				{"family history", clinical, "FH"},
				{"social history", clinical, "SH"},
				{"review of systems", clinical, "ROS"},
				{"physical examination", clinical, "PE"},
				{"assessment and plan", clinical, "A&P"},
				{"normal", finding, "WNL"},
				{"abnormal", finding, "ABN"},
				{"unremarkable", finding, "WNL"},
				{"within normal limits", finding, "WNL"},
				{"no acute distress", finding, "NAD"},
				{"alert and oriented", finding, "A&O"},
				{"well appearing", finding, "WA"},
				{"ill appearing", finding, "IA"},
				{"as needed", medication, "PRN"},
				{"twice daily", medication, "BID"},
				{"three times daily", medication, "TID"},
				{"four times daily", medication, "QID"},
				{"once daily", medication, "QD"},
				{"every other day", medication, "QOD"},
				{"at bedtime", medication, "HS"},
				{"before meals", medication, "AC"},
				{"after meals", medication, "PC"},
				{"no known allergies", allergy, "NKA"},
				{"no known drug allergies", allergy, "NKDA"},
				{"penicillin allergy", allergy, "PCN"},
				{"sulfa allergy", allergy, "Sulfa"},
				{"latex allergy", allergy, "Latex"},
			},
		},
		{
			Source:     "Lab-Reference",
			Confidence: 0.85,
			Entries: []StaticEntry{
				{"hemoglobin normal", lab, "12-16 g/dL"},
				{"hematocrit normal", lab, "36-46%"},
				{"white blood cell normal", lab, "4.5-11.0 K/uL"},
				{"platelet normal", lab, "150-450 K/uL"},
				{"glucose normal", lab, "70-100 mg/dL"},
				{"creatinine normal", lab, "0.6-1.2 mg/dL"},
				{"bun normal", lab, "7-20 mg/dL"},
				{"sodium normal", lab, "136-145 mEq/L"},
				{"potassium normal", lab, "3.5-5.0 mEq/L"},
				{"chloride normal", lab, "98-107 mEq/L"},
				{"total cholesterol normal", lab, "<200 mg/dL"},
				{"ldl normal", lab, "<100 mg/dL"},
				{"hdl normal", lab, ">40 mg/dL"},
				{"triglycerides normal", lab, "<150 mg/dL"},
				{"alt normal", lab, "7-56 U/L"},
				{"ast normal", lab, "10-40 U/L"},
				{"bilirubin normal", lab, "0.3-1.2 mg/dL"},
				{"albumin normal", lab, "3.5-5.0 g/dL"},
			},
		},
		{
			Source:     "Medical-Specialty",
			Confidence: 0.87,
			Entries: []StaticEntry{
				{"cardiology", specialty, "Heart and vascular"},
				{"pulmonology", specialty, "Lungs and respiratory"},
				{"gastroenterology", specialty, "Digestive system"},
				{"neurology", specialty, "Nervous system"},
				{"endocrinology", specialty, "Hormones and metabolism"},
				{"nephrology", specialty, "Kidneys"},
				{"hematology", specialty, "Blood disorders"},
				{"oncology", specialty, "Cancer"},
				{"rheumatology", specialty, "Autoimmune and joint"},
				{"dermatology", specialty, "Skin"},
				{"ophthalmology", specialty, "Eyes"},
				{"otolaryngology", specialty, "Ear, nose, throat"},
				{"urology", specialty, "Urinary system"},
				{"gynecology", specialty, "Women's health"},
				{"orthopedics", specialty, "Bones and joints"},
				{"psychiatry", specialty, "Mental health"},
				{"emergency medicine", specialty, "Emergency care"},
				{"family medicine", specialty, "Primary care"},
				{"internal medicine", specialty, "Adult medicine"},
				{"pediatrics", specialty, "Children's medicine"},
			},
		},
	}
}
