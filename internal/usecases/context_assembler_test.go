package usecases

import (
	"strings"
	"testing"
	"time"

	"wabiz/internal/entities"
)

func testTenant() *entities.Tenant {
	return &entities.Tenant{
		ID:          "t1",
		Name:        "Panadería Luna",
		Email:       "hola@luna.example",
		PhoneNumber: "+5491100000000",
		Settings: entities.TenantSettings{
			WelcomeMessage: "¡Hola! Bienvenido a Panadería Luna.",
		},
	}
}

func sectionByKind(sections []contextSection, kind sectionKind) (contextSection, bool) {
	for _, s := range sections {
		if s.kind == kind {
			return s, true
		}
	}
	return contextSection{}, false
}

func TestBuildSections_KnowledgeEnumeratesMatches(t *testing.T) {
	matches := []entities.RelevanceMatch{
		{Entry: entities.KnowledgeEntry{Title: "Horarios", Content: "9 a 18"}},
		{Entry: entities.KnowledgeEntry{Title: "Envíos", Content: "Todo el país"}},
	}
	sections := buildSections(testTenant(), "hola", matches, nil)

	knowledge, ok := sectionByKind(sections, sectionKnowledge)
	if !ok {
		t.Fatal("knowledge section missing")
	}
	if !strings.Contains(knowledge.text, "1. Horarios: 9 a 18") {
		t.Errorf("knowledge section missing first match:\n%s", knowledge.text)
	}
	if !strings.Contains(knowledge.text, "2. Envíos: Todo el país") {
		t.Errorf("knowledge section missing second match:\n%s", knowledge.text)
	}
}

func TestBuildSections_NoMatchesUsesFallback(t *testing.T) {
	sections := buildSections(testTenant(), "hola", nil, nil)

	knowledge, ok := sectionByKind(sections, sectionKnowledge)
	if !ok {
		t.Fatal("knowledge section missing")
	}
	if !strings.Contains(knowledge.text, "comunique directamente") {
		t.Errorf("expected contact-the-business fallback, got:\n%s", knowledge.text)
	}
}

func TestBuildSections_PersonaNamesTenant(t *testing.T) {
	sections := buildSections(testTenant(), "hola", nil, nil)

	persona, ok := sectionByKind(sections, sectionPersona)
	if !ok {
		t.Fatal("persona section missing")
	}
	if !strings.Contains(persona.text, "Panadería Luna") {
		t.Errorf("persona does not name the tenant:\n%s", persona.text)
	}
	if !strings.Contains(persona.text, "ÚNICAMENTE") {
		t.Errorf("persona missing the only-supplied-information instruction:\n%s", persona.text)
	}
}

func TestBuildSections_ContactFactsOmitAbsent(t *testing.T) {
	tenant := testTenant()
	tenant.Email = ""
	sections := buildSections(tenant, "hola", nil, nil)

	contact, ok := sectionByKind(sections, sectionContact)
	if !ok {
		t.Fatal("contact section missing")
	}
	if strings.Contains(contact.text, "email") {
		t.Errorf("absent email must be silently omitted:\n%s", contact.text)
	}
	if strings.Contains(strings.ToLower(contact.text), "null") {
		t.Errorf("contact facts must never render placeholders:\n%s", contact.text)
	}
	if !strings.Contains(contact.text, "+5491100000000") {
		t.Errorf("present phone fact missing:\n%s", contact.text)
	}
}

func TestBuildSections_NoContactSectionWhenAllFactsAbsent(t *testing.T) {
	tenant := &entities.Tenant{ID: "t1", Name: "X"}
	sections := buildSections(tenant, "hola", nil, nil)

	if _, ok := sectionByKind(sections, sectionContact); ok {
		t.Error("contact section should be absent when the tenant has no facts")
	}
}

func TestBuildSections_IntentFamilies(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    []string
		absent  []string
	}{
		{"pricing", "¿cuál es el precio?", []string{"precios"}, []string{"horarios"}},
		{"hours", "¿a qué hora están abierto?", []string{"horarios"}, []string{"precios"}},
		{"multiple families", "precio y horario del servicio", []string{"precios", "horarios", "productos o servicios"}, nil},
		{"location", "donde están ubicados", []string{"ubicación"}, nil},
		{"contact", "cuál es su teléfono", []string{"contacto"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := buildSections(testTenant(), tt.message, nil, nil)
			intent, ok := sectionByKind(sections, sectionIntent)
			if !ok {
				t.Fatal("intent section missing")
			}
			for _, want := range tt.want {
				if !strings.Contains(intent.text, want) {
					t.Errorf("intent hints missing %q:\n%s", want, intent.text)
				}
			}
			for _, absent := range tt.absent {
				if strings.Contains(intent.text, absent) {
					t.Errorf("intent hints should not mention %q:\n%s", absent, intent.text)
				}
			}
		})
	}
}

func TestBuildSections_IntentOneSentencePerFamily(t *testing.T) {
	// Two pricing keywords must still produce one pricing sentence.
	sections := buildSections(testTenant(), "precio o costo?", nil, nil)
	intent, ok := sectionByKind(sections, sectionIntent)
	if !ok {
		t.Fatal("intent section missing")
	}
	if got := strings.Count(intent.text, "precios"); got != 1 {
		t.Errorf("pricing family mentioned %d times, want 1:\n%s", got, intent.text)
	}
}

func TestBuildSections_NoIntentSectionWithoutKeywords(t *testing.T) {
	sections := buildSections(testTenant(), "gracias", nil, nil)
	if _, ok := sectionByKind(sections, sectionIntent); ok {
		t.Error("intent section should be absent when no family matches")
	}
}

func TestBuildSections_HistoryFormat(t *testing.T) {
	ts1 := time.Date(2026, 3, 10, 15, 4, 0, 0, time.UTC)
	ts2 := time.Date(2026, 3, 10, 15, 5, 0, 0, time.UTC)
	history := []entities.ConversationTurn{
		{Text: "¿Tienen pan integral?", Type: entities.TurnReceived, Timestamp: ts1},
		{Text: "Sí, todos los días.", Type: entities.TurnAIAuto, Timestamp: ts2},
	}

	sections := buildSections(testTenant(), "¿Y sin gluten?", nil, history)
	hist, ok := sectionByKind(sections, sectionHistory)
	if !ok {
		t.Fatal("history section missing")
	}
	if !strings.Contains(hist.text, "[15:04] Usuario: ¿Tienen pan integral?") {
		t.Errorf("history missing formatted user turn:\n%s", hist.text)
	}
	if !strings.Contains(hist.text, "[15:05] Asistente: Sí, todos los días.") {
		t.Errorf("history missing formatted assistant turn:\n%s", hist.text)
	}
	if !strings.Contains(hist.text, "Usuario: ¿Y sin gluten?") {
		t.Errorf("history must end with the current message as the latest user turn:\n%s", hist.text)
	}
	if !strings.Contains(hist.text, "continuidad") {
		t.Errorf("history missing the continuity instruction:\n%s", hist.text)
	}
}

func TestBuildSections_NoHistorySectionWhenEmpty(t *testing.T) {
	sections := buildSections(testTenant(), "hola", nil, nil)
	if _, ok := sectionByKind(sections, sectionHistory); ok {
		t.Error("history section should be absent for an empty conversation")
	}
}

func TestAssembleContext_ScenarioWithMatchAndHistory(t *testing.T) {
	matches := []entities.RelevanceMatch{
		{Entry: entities.KnowledgeEntry{Title: "Horarios", Content: "Lunes a viernes de 9 a 18"}},
	}
	history := []entities.ConversationTurn{
		{Text: "Hola", Type: entities.TurnReceived, Timestamp: time.Now()},
		{Text: "¡Hola! ¿En qué puedo ayudarte?", Type: entities.TurnAIAuto, Timestamp: time.Now()},
	}

	got := AssembleContext(testTenant(), "¿Cuáles son los horarios?", matches, history)

	if !strings.Contains(got, "Información de la empresa") {
		t.Error("assembled context missing the company information section")
	}
	if !strings.Contains(got, "horarios de atención") {
		t.Error("assembled context missing the hours intent hint")
	}
	if !strings.Contains(got, "Historial reciente") {
		t.Error("assembled context missing the history section")
	}
	if n := strings.Count(got, "["); n != 2 {
		t.Errorf("history lists %d timestamped turns, want exactly 2", n)
	}
}

func TestAssembleContext_CapsLength(t *testing.T) {
	big := strings.Repeat("много texto acentuado ñ ", 600)
	matches := []entities.RelevanceMatch{
		{Entry: entities.KnowledgeEntry{Title: "Todo", Content: big}},
	}

	got := AssembleContext(testTenant(), "precio", matches, nil)
	if n := len([]rune(got)); n > maxContextChars {
		t.Errorf("assembled context has %d runes, cap is %d", n, maxContextChars)
	}
}
