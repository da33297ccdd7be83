// Package recommend suggests purchasable repair products for a detected
// defect using a web search API, with deterministic fallback links.
package recommend

import "strings"

// KeywordGroup is a named set of shopping keywords.
type KeywordGroup struct {
	Name     string
	Required bool
	Keywords []string
}

type groupRule struct {
	triggers []string
	groups   []KeywordGroup
}

// groupRules are checked in order; the first rule with a trigger contained
// in the problem wins.
var groupRules = []groupRule{
	{
		triggers: []string{"누수", "물", "새"},
		groups: []KeywordGroup{
			{Name: "방수용품", Required: true, Keywords: []string{"방수테이프", "실리콘 실란트", "누수차단제"}},
			{Name: "수리도구", Keywords: []string{"배관렌치", "파이프커터", "배관공구세트"}},
		},
	},
	{
		triggers: []string{"균열", "갈라짐", "크랙"},
		groups: []KeywordGroup{
			{Name: "보수재료", Required: true, Keywords: []string{"균열보수제", "벽면퍼티", "크랙보수재"}},
			{Name: "도구", Keywords: []string{"퍼티나이프", "사포지", "페인트롤러"}},
		},
	},
	{
		triggers: []string{"곰팡"},
		groups: []KeywordGroup{
			{Name: "곰팡이제거제", Required: true, Keywords: []string{"곰팡이제거제", "곰팡이방지제", "락스"}},
			{Name: "청소용품", Keywords: []string{"청소용 스크러버", "고무장갑", "방진마스크"}},
		},
	},
	{
		triggers: []string{"페인트", "도색", "칠"},
		groups: []KeywordGroup{
			{Name: "페인트", Required: true, Keywords: []string{"벽면페인트", "수성페인트", "프라이머"}},
			{Name: "도구", Keywords: []string{"페인트붓", "롤러", "마스킹테이프"}},
		},
	},
	{
		triggers: []string{"타일"},
		groups: []KeywordGroup{
			{Name: "타일보수", Required: true, Keywords: []string{"타일접착제", "타일그라우트", "타일보수재"}},
			{Name: "도구", Keywords: []string{"타일커터", "고무망치", "그라우트제거기"}},
		},
	},
	{
		triggers: []string{"기름", "때"},
		groups: []KeywordGroup{
			{Name: "세정제", Required: true, Keywords: []string{"베이킹소다", "기름때제거제", "주방세제"}},
			{Name: "청소도구", Keywords: []string{"사포", "연마패드", "청소브러시"}},
		},
	},
	{
		triggers: []string{"녹", "부식"},
		groups: []KeywordGroup{
			{Name: "녹제거제", Required: true, Keywords: []string{"녹제거제", "방청제", "부식방지제"}},
			{Name: "연마도구", Keywords: []string{"사포", "스틸울", "연마패드"}},
		},
	},
}

var defaultGroups = []KeywordGroup{
	{Name: "기본수리용품", Required: true, Keywords: []string{"만능접착제", "수리테이프", "실리콘"}},
	{Name: "도구", Keywords: []string{"드라이버세트", "망치", "펜치세트"}},
}

// GroupsFor maps a defect label to its keyword groups. location is accepted
// for future rules but does not affect the result.
func GroupsFor(problem, location string) []KeywordGroup {
	p := strings.ToLower(problem)
	for _, rule := range groupRules {
		for _, t := range rule.triggers {
			if strings.Contains(p, t) {
				return cloneGroups(rule.groups)
			}
		}
	}
	return cloneGroups(defaultGroups)
}

func cloneGroups(in []KeywordGroup) []KeywordGroup {
	out := make([]KeywordGroup, len(in))
	for i, g := range in {
		out[i] = KeywordGroup{Name: g.Name, Required: g.Required, Keywords: append([]string(nil), g.Keywords...)}
	}
	return out
}
