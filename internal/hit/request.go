// Package hit turns a table's HIT block into the body of an MTurk CreateHIT
// request. Nothing here talks to the network; the output is meant to be
// reviewed and sent by whatever client the operator already uses.
package hit

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/roach88/changeprob/internal/compiler"
	"github.com/roach88/changeprob/internal/ir"
)

// Requester endpoints.
const (
	SandboxEndpoint    = "https://mturk-requester-sandbox.us-east-1.amazonaws.com"
	ProductionEndpoint = "https://mturk-requester.us-east-1.amazonaws.com"

	// Target is the X-Amz-Target header value for CreateHIT.
	Target = "MTurkRequesterServiceV20170117.CreateHIT"
)

// System qualification type IDs.
const (
	PercentApprovedTypeID = "000000000000000000L0"
	HITsApprovedTypeID    = "00000000000000000040"
	LocaleTypeID          = "00000000000000000071"
)

const externalQuestionNS = "http://mechanicalturk.amazonaws.com/AWSMechanicalTurkDataSchemas/2006-07-14/ExternalQuestion.xsd"

// Envelope is a CreateHIT call: where to send it and what to send.
type Envelope struct {
	Endpoint string           `json:"endpoint"`
	Target   string           `json:"target"`
	Body     CreateHITRequest `json:"body"`
}

// CreateHITRequest mirrors the CreateHIT request shape.
type CreateHITRequest struct {
	Title                       string                     `json:"Title"`
	Description                 string                     `json:"Description"`
	Keywords                    string                     `json:"Keywords,omitempty"`
	Reward                      string                     `json:"Reward"`
	MaxAssignments              int64                      `json:"MaxAssignments"`
	LifetimeInSeconds           int64                      `json:"LifetimeInSeconds"`
	AssignmentDurationInSeconds int64                      `json:"AssignmentDurationInSeconds"`
	AutoApprovalDelayInSeconds  int64                      `json:"AutoApprovalDelayInSeconds"`
	Question                    string                     `json:"Question"`
	QualificationRequirements   []QualificationRequirement `json:"QualificationRequirements,omitempty"`
}

// QualificationRequirement is one worker requirement.
type QualificationRequirement struct {
	QualificationTypeID string   `json:"QualificationTypeId"`
	Comparator          string   `json:"Comparator"`
	IntegerValues       []int64  `json:"IntegerValues,omitempty"`
	LocaleValues        []Locale `json:"LocaleValues,omitempty"`
}

// Locale is a country (ISO 3166-1 alpha-2) requirement value.
type Locale struct {
	Country string `json:"Country"`
}

type externalQuestion struct {
	XMLName     xml.Name `xml:"ExternalQuestion"`
	Xmlns       string   `xml:"xmlns,attr"`
	ExternalURL string   `xml:"ExternalURL"`
	FrameHeight int64    `xml:"FrameHeight"`
}

// Build validates spec and returns the CreateHIT call for it.
func Build(spec *ir.HITSpec) (*Envelope, error) {
	if spec == nil {
		return nil, fmt.Errorf("table has no hit block")
	}
	if errs := compiler.Validate(spec); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("invalid hit: %s", strings.Join(msgs, "; "))
	}

	question, err := ExternalQuestion(spec.ExperimentURL, spec.FrameHeight)
	if err != nil {
		return nil, err
	}

	req := CreateHITRequest{
		Title:                       spec.Title,
		Description:                 spec.Description,
		Keywords:                    strings.Join(spec.Keywords, ", "),
		Reward:                      FormatReward(spec.RewardCents),
		MaxAssignments:              spec.MaxAssignments,
		LifetimeInSeconds:           mustSeconds(spec.Lifetime),
		AssignmentDurationInSeconds: mustSeconds(spec.AssignmentDuration),
		AutoApprovalDelayInSeconds:  mustSeconds(spec.AutoApprovalDelay),
		Question:                    question,
	}

	for _, q := range spec.Qualifications {
		qr, err := requirement(q)
		if err != nil {
			return nil, err
		}
		req.QualificationRequirements = append(req.QualificationRequirements, qr)
	}

	endpoint := ProductionEndpoint
	if spec.Sandbox {
		endpoint = SandboxEndpoint
	}
	return &Envelope{Endpoint: endpoint, Target: Target, Body: req}, nil
}

// ExternalQuestion returns the question XML that frames url in the worker's
// browser.
func ExternalQuestion(url string, frameHeight int64) (string, error) {
	data, err := xml.Marshal(externalQuestion{
		Xmlns:       externalQuestionNS,
		ExternalURL: url,
		FrameHeight: frameHeight,
	})
	if err != nil {
		return "", fmt.Errorf("marshal external question: %w", err)
	}
	return xml.Header + string(data), nil
}

// FormatReward renders cents as the decimal dollar string the API expects.
func FormatReward(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// Write encodes the envelope as indented JSON without HTML escaping, so the
// question XML stays readable.
func Write(w io.Writer, env *Envelope) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("encode hit request: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func requirement(q ir.Qualification) (QualificationRequirement, error) {
	qr := QualificationRequirement{Comparator: q.Comparator}
	switch q.Kind {
	case ir.QualPercentApproved:
		qr.QualificationTypeID = PercentApprovedTypeID
		qr.IntegerValues = []int64{q.Value}
	case ir.QualHITsApproved:
		qr.QualificationTypeID = HITsApprovedTypeID
		qr.IntegerValues = []int64{q.Value}
	case ir.QualLocale:
		qr.QualificationTypeID = LocaleTypeID
		qr.LocaleValues = []Locale{{Country: q.Locale}}
	default:
		return qr, fmt.Errorf("unknown qualification kind %q", q.Kind)
	}
	return qr, nil
}

// mustSeconds converts a duration already checked by Validate.
func mustSeconds(s string) int64 {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(fmt.Sprintf("unvalidated duration %q", s))
	}
	return int64(d / time.Second)
}
