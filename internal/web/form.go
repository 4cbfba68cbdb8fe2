package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/runnerr0/docrag/internal/answer"
)

// Form bounds.
const (
	MinTemperature = 0.0
	MaxTemperature = 1.0
	MinMaxTokens   = 100
	MaxMaxTokens   = 10000
	MinDocs        = 0
	MaxDocs        = 20
)

// Defaults prefill the question form.
type Defaults struct {
	Temperature float64
	MaxTokens   int
	NumDocs     int
}

// formValues is what the template renders back into the form.
type formValues struct {
	Prompt      string
	Temperature string
	MaxTokens   string
	UseRAG      bool
	NumDocs     string
}

func defaultValues(d Defaults) formValues {
	return formValues{
		Temperature: strconv.FormatFloat(d.Temperature, 'f', -1, 64),
		MaxTokens:   strconv.Itoa(d.MaxTokens),
		UseRAG:      true,
		NumDocs:     strconv.Itoa(d.NumDocs),
	}
}

// parseRequest reads and validates the submitted form. Empty numeric fields
// fall back to d. The returned formValues echo the submission even when
// validation fails.
func parseRequest(r *http.Request, d Defaults) (answer.Request, formValues, error) {
	if err := r.ParseForm(); err != nil {
		return answer.Request{}, defaultValues(d), fmt.Errorf("invalid form: %w", err)
	}

	fv := formValues{
		Prompt:      strings.TrimSpace(r.PostFormValue("prompt")),
		Temperature: strings.TrimSpace(r.PostFormValue("temperature")),
		MaxTokens:   strings.TrimSpace(r.PostFormValue("max_tokens")),
		UseRAG:      r.PostFormValue("use_rag") != "",
		NumDocs:     strings.TrimSpace(r.PostFormValue("num_docs")),
	}
	req := answer.Request{
		Prompt:      fv.Prompt,
		Temperature: d.Temperature,
		MaxTokens:   d.MaxTokens,
		UseRAG:      fv.UseRAG,
		NumDocs:     d.NumDocs,
	}

	var errs []error
	if fv.Prompt == "" {
		errs = append(errs, errors.New("Bitte eine Anfrage eingeben"))
	}
	if fv.Temperature != "" {
		v, err := strconv.ParseFloat(fv.Temperature, 64)
		if err != nil || v < MinTemperature || v > MaxTemperature {
			errs = append(errs, fmt.Errorf("Temperatur muss zwischen %g und %g liegen", MinTemperature, MaxTemperature))
		} else {
			req.Temperature = v
		}
	}
	if fv.MaxTokens != "" {
		v, err := strconv.Atoi(fv.MaxTokens)
		if err != nil || v < MinMaxTokens || v > MaxMaxTokens {
			errs = append(errs, fmt.Errorf("Maximale Tokens müssen zwischen %d und %d liegen", MinMaxTokens, MaxMaxTokens))
		} else {
			req.MaxTokens = v
		}
	}
	if fv.NumDocs != "" {
		v, err := strconv.Atoi(fv.NumDocs)
		if err != nil || v < MinDocs || v > MaxDocs {
			errs = append(errs, fmt.Errorf("Anzahl der Dokumente muss zwischen %d und %d liegen", MinDocs, MaxDocs))
		} else {
			req.NumDocs = v
		}
	}

	def := defaultValues(d)
	if fv.Temperature == "" {
		fv.Temperature = def.Temperature
	}
	if fv.MaxTokens == "" {
		fv.MaxTokens = def.MaxTokens
	}
	if fv.NumDocs == "" {
		fv.NumDocs = def.NumDocs
	}
	return req, fv, errors.Join(errs...)
}
