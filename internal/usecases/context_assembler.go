package usecases

import (
	"fmt"
	"strings"

	"wabiz/internal/entities"
)

// maxContextChars bounds the assembled context so a pathological
// knowledge base or history cannot blow up the completion call.
const maxContextChars = 6000

type sectionKind string

const (
	sectionKnowledge sectionKind = "knowledge"
	sectionPersona   sectionKind = "persona"
	sectionContact   sectionKind = "contact"
	sectionIntent    sectionKind = "intent"
	sectionHistory   sectionKind = "history"
)

type contextSection struct {
	kind sectionKind
	text string
}

// intentHints maps keyword families to one hint sentence each. The
// families are independent: a message can trigger several.
var intentHints = []struct {
	keywords []string
	hint     string
}{
	{[]string{"precio", "costo", "tarifa"}, "El usuario está preguntando por precios."},
	{[]string{"horario", "hora", "abierto"}, "El usuario está preguntando por horarios de atención."},
	{[]string{"producto", "servicio"}, "El usuario está preguntando por productos o servicios."},
	{[]string{"contacto", "teléfono", "email"}, "El usuario está buscando datos de contacto."},
	{[]string{"ubicación", "dirección", "donde"}, "El usuario está preguntando por la ubicación."},
}

func turnSpeaker(t entities.TurnType) string {
	if t == entities.TurnReceived {
		return "Usuario"
	}
	return "Asistente"
}

// buildSections produces the ordered typed sections of the context.
// Exposed separately from AssembleContext so each section's
// presence/absence can be asserted independently.
func buildSections(tenant *entities.Tenant, message string, matches []entities.RelevanceMatch, history []entities.ConversationTurn) []contextSection {
	sections := []contextSection{}

	// Knowledge: matched entries in caller order, or a generic
	// fallback instruction when nothing matched.
	if len(matches) > 0 {
		var b strings.Builder
		b.WriteString("Información de la empresa:\n")
		for i, m := range matches {
			fmt.Fprintf(&b, "%d. %s: %s\n", i+1, m.Entry.Title, m.Entry.Content)
		}
		sections = append(sections, contextSection{sectionKnowledge, strings.TrimRight(b.String(), "\n")})
	} else {
		sections = append(sections, contextSection{sectionKnowledge,
			"No se encontró información específica sobre la consulta. Indica amablemente al usuario que se comunique directamente con la empresa para obtener más detalles."})
	}

	// Persona.
	persona := "Eres el asistente virtual de esta empresa."
	if tenant != nil && tenant.Name != "" {
		persona = fmt.Sprintf("Eres el asistente virtual de %s.", tenant.Name)
	}
	persona += " Responde usando ÚNICAMENTE la información proporcionada."
	sections = append(sections, contextSection{sectionPersona, persona})

	// Contact facts: one declarative sentence per present fact,
	// absent facts are silently omitted.
	if tenant != nil {
		var facts []string
		if tenant.Settings.WelcomeMessage != "" {
			facts = append(facts, fmt.Sprintf("Mensaje de bienvenida de la empresa: %s", tenant.Settings.WelcomeMessage))
		}
		if tenant.Email != "" {
			facts = append(facts, fmt.Sprintf("El email de contacto es %s.", tenant.Email))
		}
		if tenant.PhoneNumber != "" {
			facts = append(facts, fmt.Sprintf("El teléfono de contacto es %s.", tenant.PhoneNumber))
		}
		if len(facts) > 0 {
			sections = append(sections, contextSection{sectionContact, strings.Join(facts, "\n")})
		}
	}

	// Intent hints.
	lower := strings.ToLower(message)
	var hints []string
	for _, family := range intentHints {
		for _, kw := range family.keywords {
			if strings.Contains(lower, kw) {
				hints = append(hints, family.hint)
				break
			}
		}
	}
	if len(hints) > 0 {
		sections = append(sections, contextSection{sectionIntent, strings.Join(hints, "\n")})
	}

	// History: chronological turns, then the current message as the
	// latest user turn, then a continuity instruction.
	if len(history) > 0 {
		var b strings.Builder
		b.WriteString("Historial reciente de la conversación:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "[%s] %s: %s\n", turn.Timestamp.Format("15:04"), turnSpeaker(turn.Type), turn.Text)
		}
		fmt.Fprintf(&b, "Usuario: %s\n", message)
		b.WriteString("Mantén la continuidad de la conversación.")
		sections = append(sections, contextSection{sectionHistory, b.String()})
	}

	return sections
}

// AssembleContext builds the bounded text block handed to the
// completion call. Pure: matches and history were already fetched by
// the caller.
func AssembleContext(tenant *entities.Tenant, message string, matches []entities.RelevanceMatch, history []entities.ConversationTurn) string {
	sections := buildSections(tenant, message, matches, history)
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		parts = append(parts, s.text)
	}
	assembled := strings.Join(parts, "\n\n")

	if runes := []rune(assembled); len(runes) > maxContextChars {
		assembled = string(runes[:maxContextChars])
	}
	return assembled
}
