package types

import (
	"time"

	"github.com/cloudwego/eino/schema"
)

// PersonalInfo 个人信息部分，所有字段都是可选的
type PersonalInfo struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
}

// EducationEntry 一条教育经历
type EducationEntry struct {
	Degree     string `json:"degree,omitempty"`
	University string `json:"university,omitempty"`
	Start      string `json:"start,omitempty"`
	End        string `json:"end,omitempty"`
}

// ExperienceEntry 一条工作经历
type ExperienceEntry struct {
	Position         string   `json:"position,omitempty"`
	Company          string   `json:"company,omitempty"`
	Start            string   `json:"start,omitempty"`
	End              string   `json:"end,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
}

// SkillSet 技能集合，分为技术技能和软技能两类。
// 合并语义是去重并集，顺序不承载任何含义。
type SkillSet struct {
	Technical []string `json:"technical"`
	Soft      []string `json:"soft"`
}

// CVRecord 为单个用户累积的简历数据。
// 零值即可用：任何层级的字段缺失都不应导致下游消费方出错。
type CVRecord struct {
	Personal   PersonalInfo      `json:"personal"`
	Education  []EducationEntry  `json:"education"`
	Experience []ExperienceEntry `json:"experience"`
	Skills     SkillSet          `json:"skills"`
}

// NewCVRecord 创建一个空的简历记录，切片预先初始化以保证JSON输出为 [] 而不是 null
func NewCVRecord() *CVRecord {
	return &CVRecord{
		Education:  []EducationEntry{},
		Experience: []ExperienceEntry{},
		Skills:     SkillSet{Technical: []string{}, Soft: []string{}},
	}
}

// CVProgress 简历完成度，按四个顶层部分计算
type CVProgress struct {
	Percentage      int  `json:"percentage"`
	CompletedFields int  `json:"completedFields"`
	TotalFields     int  `json:"totalFields"`
	HasCompleteData bool `json:"hasCompleteData"`
}

// Session 单个用户的会话状态：对话记录 + 累积的简历数据。
// 由 session.Store 独占持有，其他组件不得跨请求保留引用。
type Session struct {
	UserID       string            `json:"userId"`
	ChatHistory  []*schema.Message `json:"chatHistory"`
	CVData       *CVRecord         `json:"cvData"`
	LastAccessed time.Time         `json:"lastAccessed"`
}

// NewSession 创建一个新会话
func NewSession(userID string) *Session {
	return &Session{
		UserID:      userID,
		ChatHistory: make([]*schema.Message, 0, 8),
		CVData:      NewCVRecord(),
	}
}
