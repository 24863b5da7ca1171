package reconciler

import (
	"encoding/json"
	"strings"

	"cv-assistant-go/internal/constants"
	"cv-assistant-go/internal/logger"
	"cv-assistant-go/internal/types"
)

// 本文件负责把形状不可靠的片段归一化成严格的内部结构：
// 先解决两套字段名，再把单个对象包装成单元素数组，再拆分合并
// 的日期字符串。归一化失败的内容记日志后丢弃，不向下游传播。

// firstNonEmpty 返回第一个非空字符串
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// splitDateRange 把 "2019 - 2021" 这样的合并日期拆成起止两段。
// 没有分隔符时整段作为开始日期返回。
func splitDateRange(dates string) (start, end string) {
	dates = strings.TrimSpace(dates)
	if dates == "" {
		return "", ""
	}
	parts := strings.SplitN(dates, constants.DateRangeSeparator, 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return dates, ""
}

// decodeEntryList 宽容地解码"对象或数组"两种形状。
// LLM输出一对多关系时经常只给一个对象，这里统一包装成单元素数组。
func decodeEntryList[T any](raw json.RawMessage, section string) []T {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	switch trimmed[0] {
	case '[':
		var list []T
		if err := json.Unmarshal(raw, &list); err != nil {
			logger.Warn().Err(err).Str("section", section).Msg("片段数组解码失败，丢弃该部分")
			return nil
		}
		return list
	case '{':
		var single T
		if err := json.Unmarshal(raw, &single); err != nil {
			logger.Warn().Err(err).Str("section", section).Msg("片段对象解码失败，丢弃该部分")
			return nil
		}
		return []T{single}
	default:
		logger.Warn().Str("section", section).Msg("片段形状无法识别，丢弃该部分")
		return nil
	}
}

// normalizeEducation 把一条原始教育经历归一化为内部结构。
// 独立的 start/end 字段优先于合并的 dates/fechas 字符串。
func normalizeEducation(raw types.RawEducation) types.EducationEntry {
	entry := types.EducationEntry{
		Degree:     firstNonEmpty(raw.Degree, raw.Titulo),
		University: firstNonEmpty(raw.University, raw.Universidad),
		Start:      strings.TrimSpace(raw.Start),
		End:        strings.TrimSpace(raw.End),
	}

	if entry.Start == "" && entry.End == "" {
		entry.Start, entry.End = splitDateRange(firstNonEmpty(raw.Dates, raw.Fechas))
	}
	return entry
}

// normalizeExperience 把一条原始工作经历归一化为内部结构
func normalizeExperience(raw types.RawExperience) types.ExperienceEntry {
	entry := types.ExperienceEntry{
		Position: firstNonEmpty(raw.Position, raw.Puesto),
		Company:  firstNonEmpty(raw.Company, raw.Empresa),
		Start:    strings.TrimSpace(raw.Start),
		End:      strings.TrimSpace(raw.End),
	}

	if entry.Start == "" && entry.End == "" {
		entry.Start, entry.End = splitDateRange(firstNonEmpty(raw.Dates, raw.Fechas))
	}

	entry.Responsibilities = normalizeResponsibilities(raw.Responsibilities, raw.Responsabilidades)
	return entry
}

// normalizeResponsibilities 处理职责字段的三种形状：
// 字符串数组、单个字符串（可能分号分隔）、或西语的分号分隔字符串
func normalizeResponsibilities(raw json.RawMessage, alias string) []string {
	var items []string

	trimmed := strings.TrimSpace(string(raw))
	switch {
	case trimmed == "" || trimmed == "null":
		// fall through to alias
	case trimmed[0] == '[':
		if err := json.Unmarshal(raw, &items); err != nil {
			logger.Warn().Err(err).Msg("responsibilities 数组解码失败，丢弃")
			items = nil
		}
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			items = strings.Split(s, constants.ResponsibilityDelimiter)
		}
	}

	if len(items) == 0 && alias != "" {
		items = strings.Split(alias, constants.ResponsibilityDelimiter)
	}

	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			cleaned = append(cleaned, item)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}

// normalizeSkillFamily 读取一类技能（两套字段名），去掉空白项
func normalizeSkillFamily(primary, alias []string) []string {
	src := primary
	if len(src) == 0 {
		src = alias
	}
	cleaned := make([]string, 0, len(src))
	for _, s := range src {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}
