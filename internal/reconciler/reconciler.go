package reconciler

import (
	"math"

	"cv-assistant-go/internal/constants"
	"cv-assistant-go/internal/types"
)

// Merge 把一个可能残缺、可能使用别名字段的片段合并进权威简历记录。
// 每个产生非空片段的对话轮次调用一次。
//
// 合并策略：
//   - personal: 逐字段覆盖，取片段主名、片段别名、现有值中第一个非空者，
//     后到的缺失字段永远不会清掉已有值
//   - education/experience: 追加（保留到达顺序）；原实现是整体替换，
//     替换会在模型重发部分列表时丢数据，故此处固定为追加
//   - skills: 按类别做去重并集
//
// 片段中完全缺失的部分不触碰现有记录。
func Merge(record *types.CVRecord, frag *types.RawFragment) {
	if record == nil || frag.IsEmpty() {
		return
	}

	mergePersonal(record, frag.Personal)

	for _, raw := range decodeEntryList[types.RawEducation](frag.Education, constants.SectionEducation) {
		record.Education = append(record.Education, normalizeEducation(raw))
	}

	rawExperience := frag.Experience
	if len(rawExperience) == 0 {
		rawExperience = frag.Experiencia
	}
	for _, raw := range decodeEntryList[types.RawExperience](rawExperience, constants.SectionExperience) {
		record.Experience = append(record.Experience, normalizeExperience(raw))
	}

	mergeSkills(record, frag)
}

func mergePersonal(record *types.CVRecord, p *types.RawPersonal) {
	if p == nil {
		return
	}
	record.Personal.Name = firstNonEmpty(p.Name, p.Nombre, record.Personal.Name)
	record.Personal.Email = firstNonEmpty(p.Email, p.Correo, record.Personal.Email)
	record.Personal.Phone = firstNonEmpty(p.Phone, p.Telefono, record.Personal.Phone)
	record.Personal.Location = firstNonEmpty(p.Location, p.Ubicacion, record.Personal.Location)
}

func mergeSkills(record *types.CVRecord, frag *types.RawFragment) {
	skills := frag.Skills
	if skills == nil {
		skills = frag.Habilidades
	}
	if skills == nil {
		return
	}

	record.Skills.Technical = unionSkills(record.Skills.Technical,
		normalizeSkillFamily(skills.Technical, skills.Tecnicas))
	record.Skills.Soft = unionSkills(record.Skills.Soft,
		normalizeSkillFamily(skills.Soft, skills.Blandas))
}

// unionSkills 去重并集。结果顺序不承载含义，这里保留首次出现的顺序
// 只是为了让合并幂等且输出稳定。
func unionSkills(existing, incoming []string) []string {
	if len(incoming) == 0 {
		return existing
	}

	seen := make(map[string]bool, len(existing)+len(incoming))
	merged := make([]string, 0, len(existing)+len(incoming))
	for _, s := range existing {
		if !seen[s] {
			seen[s] = true
			merged = append(merged, s)
		}
	}
	for _, s := range incoming {
		if !seen[s] {
			seen[s] = true
			merged = append(merged, s)
		}
	}
	return merged
}

// Progress 计算简历完成度：四个顶层部分中已填充的比例。
// 填充的定义：personal.name 非空、education 非空、experience 非空、
// 至少有一项技能。
func Progress(record *types.CVRecord) types.CVProgress {
	const total = 4

	completed := 0
	if record != nil {
		if record.Personal.Name != "" {
			completed++
		}
		if len(record.Education) > 0 {
			completed++
		}
		if len(record.Experience) > 0 {
			completed++
		}
		if len(record.Skills.Technical) > 0 || len(record.Skills.Soft) > 0 {
			completed++
		}
	}

	return types.CVProgress{
		Percentage:      int(math.Round(float64(completed) / float64(total) * 100)),
		CompletedFields: completed,
		TotalFields:     total,
		HasCompleteData: completed == total,
	}
}

// MissingSections 返回渲染PDF前缺失的必要部分。
// 必要条件：personal.name 存在，且 education/experience/skills 至少一项非空。
// 三个内容部分全空时全部列出，让调用方能在400响应里说清缺了什么。
func MissingSections(record *types.CVRecord) []string {
	var missing []string
	if record == nil || record.Personal.Name == "" {
		missing = append(missing, constants.SectionPersonalName)
	}
	if record == nil {
		return append(missing, constants.SectionEducation, constants.SectionExperience, constants.SectionSkills)
	}

	hasEducation := len(record.Education) > 0
	hasExperience := len(record.Experience) > 0
	hasSkills := len(record.Skills.Technical) > 0 || len(record.Skills.Soft) > 0
	if hasEducation || hasExperience || hasSkills {
		return missing
	}
	return append(missing, constants.SectionEducation, constants.SectionExperience, constants.SectionSkills)
}
