package careerapi

import "errors"

// Field names of the prediction form as the career API expects them.
const (
	FieldEducation        = "Education"
	FieldInterest         = "Interest"
	FieldFavoriteSubject  = "Favorite_Subject"
	FieldExtracurriculars = "Extracurriculars"
	FieldPersonalityTrait = "Personality_Trait"
)

// PredictionFields lists the prediction form fields in display order.
var PredictionFields = []string{
	FieldEducation,
	FieldInterest,
	FieldFavoriteSubject,
	FieldExtracurriculars,
	FieldPersonalityTrait,
}

type PredictionRequest struct {
	Education        string `json:"Education"`
	Interest         string `json:"Interest"`
	FavoriteSubject  string `json:"Favorite_Subject"`
	Extracurriculars string `json:"Extracurriculars"`
	PersonalityTrait string `json:"Personality_Trait"`
}

// PredictionRequestFromFields builds a request from a field mapping keyed by
// the Field* constants.
func PredictionRequestFromFields(fields map[string]string) PredictionRequest {
	return PredictionRequest{
		Education:        fields[FieldEducation],
		Interest:         fields[FieldInterest],
		FavoriteSubject:  fields[FieldFavoriteSubject],
		Extracurriculars: fields[FieldExtracurriculars],
		PersonalityTrait: fields[FieldPersonalityTrait],
	}
}

type PredictionResult struct {
	RecommendedCareer string `json:"Recommended_Career"`
}

func (r *PredictionResult) validate() error {
	if r.RecommendedCareer == "" {
		return errors.New("response missing Recommended_Career")
	}
	return nil
}

type RetrainRequest struct {
	FileName string `json:"fileName"`
}

// Metrics holds the evaluation scores returned after retraining. A nil field
// means the service did not report it.
type Metrics struct {
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Precision *float64 `json:"precision,omitempty"`
	Recall    *float64 `json:"recall,omitempty"`
	F1        *float64 `json:"f1,omitempty"`
}

// Charts is the paired count plot and stacked bar plot for one parameter.
type Charts struct {
	CountPlot string `json:"count_plot"`
	BarPlot   string `json:"bar_plot"`
}

func (c *Charts) validate() error {
	if c.CountPlot == "" || c.BarPlot == "" {
		return errors.New("response missing count_plot or bar_plot")
	}
	return nil
}

type validator interface {
	validate() error
}
