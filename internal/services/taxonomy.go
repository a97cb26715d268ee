package services

import "strings"

// SkillProfile is the fixed taxonomy entry for a known skill: the
// category and baseline required level criteria derivation looks up, plus
// alternate names used for fuzzy matching.
type SkillProfile struct {
	Canonical     string
	Category      string
	RequiredLevel float64
	Alternatives  []string
}

var skillTaxonomy = []SkillProfile{
	{Canonical: "Go", Category: "backend", RequiredLevel: 0.7, Alternatives: []string{"golang"}},
	{Canonical: "Python", Category: "backend", RequiredLevel: 0.6, Alternatives: []string{"py"}},
	{Canonical: "Java", Category: "backend", RequiredLevel: 0.6, Alternatives: []string{"jvm"}},
	{Canonical: "SQL", Category: "databases", RequiredLevel: 0.6, Alternatives: []string{"postgresql", "postgres", "mysql"}},
	{Canonical: "NoSQL", Category: "databases", RequiredLevel: 0.5, Alternatives: []string{"mongodb", "redis", "cassandra"}},
	{Canonical: "REST APIs", Category: "backend", RequiredLevel: 0.6, Alternatives: []string{"rest", "http apis", "api design"}},
	{Canonical: "gRPC", Category: "backend", RequiredLevel: 0.5, Alternatives: []string{"protobuf"}},
	{Canonical: "Docker", Category: "devops", RequiredLevel: 0.5, Alternatives: []string{"containers"}},
	{Canonical: "Kubernetes", Category: "devops", RequiredLevel: 0.5, Alternatives: []string{"k8s"}},
	{Canonical: "AWS", Category: "cloud", RequiredLevel: 0.5, Alternatives: []string{"amazon web services"}},
	{Canonical: "GCP", Category: "cloud", RequiredLevel: 0.5, Alternatives: []string{"google cloud"}},
	{Canonical: "JavaScript", Category: "frontend", RequiredLevel: 0.5, Alternatives: []string{"js", "typescript", "ts"}},
	{Canonical: "React", Category: "frontend", RequiredLevel: 0.5, Alternatives: []string{"reactjs"}},
	{Canonical: "Machine Learning", Category: "ai", RequiredLevel: 0.6, Alternatives: []string{"ml", "deep learning"}},
	{Canonical: "LLM", Category: "ai", RequiredLevel: 0.5, Alternatives: []string{"large language models", "prompt engineering", "rag"}},
	{Canonical: "System Design", Category: "architecture", RequiredLevel: 0.7, Alternatives: []string{"architecture", "distributed systems"}},
	{Canonical: "Communication", Category: "soft", RequiredLevel: 0.5, Alternatives: []string{"teamwork", "collaboration"}},
	{Canonical: "Leadership", Category: "soft", RequiredLevel: 0.5, Alternatives: []string{"mentoring", "team lead"}},
}

const (
	defaultCategory      = "general"
	defaultRequiredLevel = 0.5
)

// LookupSkill resolves a raw skill name against the taxonomy using the
// canonical name and its alternatives. Unknown skills get a general
// profile under their own name.
func LookupSkill(name string) SkillProfile {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, profile := range skillTaxonomy {
		if strings.ToLower(profile.Canonical) == normalized {
			return profile
		}
		for _, alt := range profile.Alternatives {
			if alt == normalized {
				return profile
			}
		}
	}
	return SkillProfile{
		Canonical:     strings.TrimSpace(name),
		Category:      defaultCategory,
		RequiredLevel: defaultRequiredLevel,
	}
}

// MatchSkillInText reports whether a skill (or one of its alternatives)
// appears in free text. Used by resume ingestion to pre-fill context data.
func MatchSkillInText(profile SkillProfile, text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, strings.ToLower(profile.Canonical)) {
		return true
	}
	for _, alt := range profile.Alternatives {
		if strings.Contains(lower, alt) {
			return true
		}
	}
	return false
}

// KnownSkills returns the taxonomy entries. The slice is shared; callers
// must not mutate it.
func KnownSkills() []SkillProfile {
	return skillTaxonomy
}
