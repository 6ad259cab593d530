package auth

import (
	"fmt"
	"math"
	"strings"

	"github.com/jrsteele09/churchai-session/users"
)

type Decision string

const (
	DecisionAutoApprove     Decision = "auto_approve"
	DecisionManualReview    Decision = "manual_review"
	DecisionRequestMoreInfo Decision = "request_more_info"
)

const (
	autoApproveThreshold  = 0.75
	manualReviewThreshold = 0.50
)

var (
	churchEmailDomains = []string{
		"church.org", "iglesia.org", "ministerio.org", "templo.org",
		"pastoral.com", "pastor.com", "cristianos.org",
	}
	genericEmailDomains = []string{"gmail.com", "hotmail.com", "yahoo.com", "outlook.com"}
	religiousEmailTerms = []string{"pastor", "iglesia", "church", "ministerio"}

	recognizedDenominations = []string{
		"evangelica", "pentecostal", "bautista", "metodista",
		"presbiteriana", "adventista", "anglicana", "luterana",
		"catolica", "cristiana", "apostolica", "reformada",
	}
)

// Assessment is the outcome of scoring a pastor registration
type Assessment struct {
	Score                 float64
	Decision              Decision
	Message               string
	PositiveFactors       []string
	NegativeFactors       []string
	EstimatedApprovalTime string
	CanCreateChurch       bool
}

// Notes flattens the factors for storage on the user record
func (a Assessment) Notes() []string {
	notes := make([]string, 0, len(a.PositiveFactors)+len(a.NegativeFactors))
	notes = append(notes, a.PositiveFactors...)
	for _, f := range a.NegativeFactors {
		notes = append(notes, "-"+f)
	}
	return notes
}

// AssessPastorRegistration scores a pastor's registration between 0 and 1.
// Email contributes up to 0.35, pastoral info 0.4, documents 0.3 and a full name 0.05.
func AssessPastorRegistration(email, firstName, lastName string, info *users.PastorInfo) Assessment {
	var (
		score    float64
		positive []string
		negative []string
	)

	emailScore, emailFactors := assessEmail(email)
	score += emailScore
	positive = append(positive, emailFactors...)

	if info != nil {
		infoScore, infoFactors := assessPastorInfo(info)
		score += infoScore
		positive = append(positive, infoFactors...)

		docScore, docFactors := assessDocumentation(info)
		score += docScore
		positive = append(positive, docFactors...)
	} else {
		negative = append(negative, "No se proporcionó información pastoral")
	}

	if firstName != "" && lastName != "" {
		score += 0.05
		positive = append(positive, "Nombre completo proporcionado")
	}

	score = math.Min(score, 1.0)

	a := Assessment{
		Score:           math.Round(score*1000) / 1000,
		PositiveFactors: positive,
		NegativeFactors: negative,
	}

	// Decide on the unrounded score
	switch {
	case score >= autoApproveThreshold:
		a.Decision = DecisionAutoApprove
		a.Message = "¡Excelente! Tu solicitud ha sido aprobada automáticamente. Ya puedes registrar tu iglesia."
		a.EstimatedApprovalTime = "Inmediato"
	case score >= manualReviewThreshold:
		a.Decision = DecisionManualReview
		a.Message = "Tu solicitud está en revisión manual. Nuestro equipo la verificará pronto."
		a.EstimatedApprovalTime = "24-48 horas"
	default:
		a.Decision = DecisionRequestMoreInfo
		a.Message = "Necesitamos más información para aprobar tu solicitud. Por favor, completa tu perfil."
		a.EstimatedApprovalTime = "Pendiente de información adicional"
	}
	a.CanCreateChurch = a.Decision == DecisionAutoApprove
	return a
}

func assessEmail(email string) (float64, []string) {
	if email == "" {
		return 0, nil
	}

	var (
		score   float64
		factors []string
	)

	lower := strings.ToLower(email)
	domain := ""
	if at := strings.LastIndex(lower, "@"); at >= 0 {
		domain = lower[at+1:]
	}

	switch {
	case containsAny(domain, churchEmailDomains):
		score += 0.3
		factors = append(factors, "Email de dominio institucional de iglesia")
	case !isOneOf(domain, genericEmailDomains):
		score += 0.2
		factors = append(factors, "Email de dominio personalizado")
	default:
		score += 0.1
		factors = append(factors, "Email válido")
	}

	if containsAny(lower, religiousEmailTerms) {
		score += 0.05
		factors = append(factors, "Email contiene términos religiosos")
	}
	return score, factors
}

func assessPastorInfo(info *users.PastorInfo) (float64, []string) {
	var (
		score   float64
		factors []string
	)

	denomination := strings.ToLower(info.Denomination)
	switch {
	case containsAny(denomination, recognizedDenominations):
		score += 0.15
		factors = append(factors, "Denominación reconocida: "+info.Denomination)
	case denomination != "":
		score += 0.05
		factors = append(factors, "Denominación proporcionada")
	}

	years := info.YearsInMinistry
	switch {
	case years >= 10:
		score += 0.15
		factors = append(factors, fmt.Sprintf("Amplia experiencia ministerial (%d años)", years))
	case years >= 5:
		score += 0.10
		factors = append(factors, fmt.Sprintf("Experiencia ministerial significativa (%d años)", years))
	case years >= 1:
		score += 0.05
		factors = append(factors, fmt.Sprintf("Experiencia ministerial (%d años)", years))
	}

	if info.CurrentChurchName != "" {
		score += 0.10
		factors = append(factors, "Iglesia actual identificada")
	}
	return score, factors
}

func assessDocumentation(info *users.PastorInfo) (float64, []string) {
	var (
		score   float64
		factors []string
	)
	if info.OrdinationCertificateURL != "" {
		score += 0.20
		factors = append(factors, "Certificado de ordenación proporcionado")
	}
	if info.ReferenceLetterURL != "" {
		score += 0.10
		factors = append(factors, "Carta de referencia adjunta")
	}
	return score, factors
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func isOneOf(s string, values []string) bool {
	for _, v := range values {
		if s == v {
			return true
		}
	}
	return false
}
