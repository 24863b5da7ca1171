package constants

import "time"

const (
	// Session lifecycle defaults (overridable via config)
	DefaultSessionTTL    = time.Hour
	DefaultSweepInterval = 30 * time.Minute

	// DateRangeSeparator 合并日期字符串的分隔符，例如 "2019 - 2021"
	DateRangeSeparator = " - "

	// ResponsibilityDelimiter responsabilidades 字段的分隔符
	ResponsibilityDelimiter = ";"

	// 简历四个顶层部分的名称，用于完成度计算和渲染前校验
	SectionPersonalName = "personal.name"
	SectionEducation    = "education"
	SectionExperience   = "experience"
	SectionSkills       = "skills"
)
