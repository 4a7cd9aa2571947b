package models

import (
	_ "embed"
	"strings"
)

//go:embed rules.txt
var rulebook string

// Rulebook returns the official duel rules shown to players and sent to the
// oracle with every scoring and arbitration call.
func Rulebook() string {
	return strings.TrimSpace(rulebook)
}

var tierLabels = [...]string{"Copil (9-10 ani)", "Începător", "Mediu", "Avansat", "Expert"}

var tierDescriptions = [...]string{
	"Nivel 1 (Copil, 9-10 ani): limbaj foarte simplu, concepte concrete (animale, natură), extrem de încurajator. Metaforele trebuie să fie evidente.",
	"Nivel 2 (Începător): limbaj clar, concepte de bază și metafore simple. Încurajator, cu explicații clare.",
	"Nivel 3 (Mediu): concepte abstracte simple și referințe culturale comune. Nivel mediu de creativitate.",
	"Nivel 4 (Avansat): limbaj elevat, concepte filosofice și literare. Evaluare exigentă, se așteaptă originalitate.",
	"Nivel 5 (Expert): concepte de nișă, limbaj academic și metafore complexe. Critică la nivel înalt.",
}

// TierLabel is the short display name of tier t.
func TierLabel(t int) string {
	if !ValidTier(t) {
		return "Necunoscut"
	}
	return tierLabels[t-1]
}

// TierDescription tells the oracle how to pitch its language at tier t.
func TierDescription(t int) string {
	if !ValidTier(t) {
		return ""
	}
	return tierDescriptions[t-1]
}

// ExcludableTopics lists the topics a player may forbid.
var ExcludableTopics = []string{
	"Timp și Spațiu", "Iubire și Pierdere", "Dreptate și Etică", "Libertate și Determinism",
	"Mitologie Greacă", "Mitologie Egipteană", "Mitologie Nordică", "Filosofie Stoică",
	"Filosofie Existențialistă", "Ideile lui Platon", "Fizică Cuantică", "Biologie Genetică",
	"Cosmologie", "Artă Suprarealistă", "Literatură Gotică", "Literatură Science-Fiction",
	"Istoria Imperiului Roman", "Cultura Japoniei Feudale", "Renașterea Italiană", "Concepte din Psihanaliză",
}

var favoriteThemes = map[int][]string{
	1: {"Animale", "Fenomene naturale", "Emoții simple", "Culori și forme", "Elemente magice", "Obiecte școlare", "Jucării și jocuri", "Alimente", "Locuri cunoscute", "Timp și spațiu"},
	2: {"Supereroi și puteri", "Frica și curajul", "Emoții complexe", "Mitologie simplificată", "Elemente opuse", "Meserii fantastice", "Valori morale", "Tehnologie", "Natură", "Obstacole și salvare"},
	3: {"Concepte morale", "Sentimente duale", "Putere și slăbiciune", "Libertate și constrângere", "Timp", "Mituri clasice", "Tehnologie și umanitate", "Identitate și alter ego", "Construire vs. distrugere", "Relații umane"},
	4: {"Conștiință și inconștient", "Viață și moarte", "Sinele", "Rațiune vs. instinct", "Adevăr și iluzie", "Timpul subiectiv", "Teama de necunoscut", "Mitologie profundă", "Conflict interior", "Etica deciziei"},
	5: {"Nimicul", "Arhetipuri", "Sinele multiplicat", "Sacrul și profanul", "Limbajul însuși", "Realitatea", "Libertatea absolută", "Ciclul vieții", "Destin și voință", "Limitele cunoașterii"},
}

// FavoriteThemesFor lists the themes offered at tier t.
func FavoriteThemesFor(t int) []string {
	return favoriteThemes[t]
}

// ReasonCode identifies one of the predefined challenge reasons.
type ReasonCode string

const (
	ReasonRepetition    ReasonCode = "repetition"
	ReasonIrrelevant    ReasonCode = "irrelevant"
	ReasonFailedAnnul   ReasonCode = "failed-annihilation"
	ReasonFlatNegation  ReasonCode = "flat-negation"
	ReasonVague         ReasonCode = "vague"
	ReasonBadLogic      ReasonCode = "bad-logic"
	ReasonNoMetaphor    ReasonCode = "no-metaphor"
	ReasonExcludedTopic ReasonCode = "excluded-topic"
	ReasonRegression    ReasonCode = "complexity-regression"
	ReasonCliche        ReasonCode = "cliche"
)

// ChallengeReason is a predefined ground for disputing a pair of messages.
type ChallengeReason struct {
	Code        ReasonCode `yaml:"code" json:"code"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description" json:"description"`
}

// ChallengeReasons is the fixed list a challenge must pick from.
var ChallengeReasons = []ChallengeReason{
	{ReasonRepetition, "Repetiție evidentă", "AI-ul a repetat o idee sau un concept anterior."},
	{ReasonIrrelevant, "Răspuns irelevant", "Replica AI-ului nu are legătură cu mesajul meu."},
	{ReasonFailedAnnul, "Anihilare eșuată", "Răspunsul AI nu anulează, transformă sau depășește replica mea."},
	{ReasonFlatNegation, "Negație plată", "AI-ul a folosit o negație simplă, fără a construi o nouă imagine."},
	{ReasonVague, "Răspuns vag/gol", "Replica AI-ului este prea generală sau goală de sens."},
	{ReasonBadLogic, "Logică deficitară", "Relația de anihilare propusă de AI este forțată sau ilogică."},
	{ReasonNoMetaphor, "Lipsa metaforei", "Răspunsul este pur literal, contrar nivelului de dificultate."},
	{ReasonExcludedTopic, "Încălcare subiect interzis", "AI-ul a folosit un concept dintr-un subiect interzis."},
	{ReasonRegression, "Regres în complexitate", "Răspunsul AI este mult prea simplu pentru dificultatea setată."},
	{ReasonCliche, "Clișeu uzat", "Replica AI-ului este o metaforă comună, lipsită de originalitate."},
}

// LookupReason finds the predefined reason with the given code.
func LookupReason(code ReasonCode) (ChallengeReason, bool) {
	for _, r := range ChallengeReasons {
		if r.Code == code {
			return r, true
		}
	}
	return ChallengeReason{}, false
}
