package transcription

// VocabularyEntry is a recognizable medical term with optional coded
// identifiers.
type VocabularyEntry struct {
	Term     string
	Category TermCategory
	Codes    map[string]string
}

// DefaultVocabulary returns the built-in medical vocabulary used for term
// extraction and provider keyword boosting. Entries are matched
// case-insensitively on word boundaries; multi-word terms are supported.
func DefaultVocabulary() []VocabularyEntry {
	return []VocabularyEntry{
		// Conditions
		{Term: "hypertension", Category: CategoryCondition, Codes: map[string]string{"icd10": "I10"}},
		{Term: "diabetes mellitus", Category: CategoryCondition, Codes: map[string]string{"icd10": "E11"}},
		{Term: "diabetes", Category: CategoryCondition, Codes: map[string]string{"icd10": "E11.9"}},
		{Term: "atrial fibrillation", Category: CategoryCondition, Codes: map[string]string{"icd10": "I48"}},
		{Term: "asthma", Category: CategoryCondition, Codes: map[string]string{"icd10": "J45"}},
		{Term: "copd", Category: CategoryCondition, Codes: map[string]string{"icd10": "J44.9"}},
		{Term: "pneumonia", Category: CategoryCondition, Codes: map[string]string{"icd10": "J18.9"}},
		{Term: "hyperlipidemia", Category: CategoryCondition, Codes: map[string]string{"icd10": "E78.5"}},
		{Term: "hypothyroidism", Category: CategoryCondition, Codes: map[string]string{"icd10": "E03.9"}},
		{Term: "anemia", Category: CategoryCondition, Codes: map[string]string{"icd10": "D64.9"}},
		{Term: "gastroesophageal reflux", Category: CategoryCondition, Codes: map[string]string{"icd10": "K21.9"}},
		{Term: "migraine", Category: CategoryCondition, Codes: map[string]string{"icd10": "G43.909"}},
		{Term: "osteoarthritis", Category: CategoryCondition, Codes: map[string]string{"icd10": "M19.90"}},
		{Term: "depression", Category: CategoryCondition, Codes: map[string]string{"icd10": "F32.9"}},
		{Term: "anxiety", Category: CategoryCondition, Codes: map[string]string{"icd10": "F41.9"}},

		// Medications
		{Term: "lisinopril", Category: CategoryMedication, Codes: map[string]string{"rxnorm": "29046"}},
		{Term: "metformin", Category: CategoryMedication, Codes: map[string]string{"rxnorm": "6809"}},
		{Term: "atorvastatin", Category: CategoryMedication, Codes: map[string]string{"rxnorm": "83367"}},
		{Term: "amlodipine", Category: CategoryMedication, Codes: map[string]string{"rxnorm": "17767"}},
		{Term: "levothyroxine", Category: CategoryMedication, Codes: map[string]string{"rxnorm": "10582"}},
		{Term: "omeprazole", Category: CategoryMedication, Codes: map[string]string{"rxnorm": "7646"}},
		{Term: "albuterol", Category: CategoryMedication, Codes: map[string]string{"rxnorm": "435"}},
		{Term: "warfarin", Category: CategoryMedication, Codes: map[string]string{"rxnorm": "11289"}},
		{Term: "ibuprofen", Category: CategoryMedication, Codes: map[string]string{"rxnorm": "5640"}},
		{Term: "aspirin", Category: CategoryMedication, Codes: map[string]string{"rxnorm": "1191"}},
		{Term: "insulin", Category: CategoryMedication, Codes: map[string]string{"rxnorm": "5856"}},
		{Term: "prednisone", Category: CategoryMedication, Codes: map[string]string{"rxnorm": "8640"}},

		// Procedures
		{Term: "echocardiogram", Category: CategoryProcedure, Codes: map[string]string{"cpt": "93306"}},
		{Term: "electrocardiogram", Category: CategoryProcedure, Codes: map[string]string{"cpt": "93000"}},
		{Term: "colonoscopy", Category: CategoryProcedure, Codes: map[string]string{"cpt": "45378"}},
		{Term: "mri", Category: CategoryProcedure, Codes: map[string]string{"cpt": "70551"}},
		{Term: "ct scan", Category: CategoryProcedure, Codes: map[string]string{"cpt": "74150"}},
		{Term: "x-ray", Category: CategoryProcedure, Codes: map[string]string{"cpt": "71045"}},
		{Term: "biopsy", Category: CategoryProcedure, Codes: map[string]string{"cpt": "88305"}},

		// Anatomy
		{Term: "left ventricle", Category: CategoryAnatomy},
		{Term: "abdomen", Category: CategoryAnatomy},
		{Term: "thyroid", Category: CategoryAnatomy},
		{Term: "liver", Category: CategoryAnatomy},
		{Term: "kidney", Category: CategoryAnatomy},
		{Term: "lungs", Category: CategoryAnatomy},

		// Symptoms
		{Term: "chest pain", Category: CategorySymptom, Codes: map[string]string{"icd10": "R07.9"}},
		{Term: "shortness of breath", Category: CategorySymptom, Codes: map[string]string{"icd10": "R06.02"}},
		{Term: "dizziness", Category: CategorySymptom, Codes: map[string]string{"icd10": "R42"}},
		{Term: "fatigue", Category: CategorySymptom, Codes: map[string]string{"icd10": "R53.83"}},
		{Term: "nausea", Category: CategorySymptom, Codes: map[string]string{"icd10": "R11.0"}},
		{Term: "palpitations", Category: CategorySymptom, Codes: map[string]string{"icd10": "R00.2"}},
		{Term: "headache", Category: CategorySymptom, Codes: map[string]string{"icd10": "R51.9"}},

		// Measurements
		{Term: "blood pressure", Category: CategoryMeasurement},
		{Term: "heart rate", Category: CategoryMeasurement},
		{Term: "hemoglobin a1c", Category: CategoryMeasurement},
		{Term: "cholesterol", Category: CategoryMeasurement},
		{Term: "glucose", Category: CategoryMeasurement},
	}
}

// BoostTerms returns the vocabulary's terms as a flat list suitable for
// provider keyword boosting.
func BoostTerms(vocab []VocabularyEntry) []string {
	terms := make([]string, 0, len(vocab))
	for _, entry := range vocab {
		terms = append(terms, entry.Term)
	}
	return terms
}
