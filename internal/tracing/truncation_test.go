package tracing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPII(t *testing.T) {
	assert.Equal(t, "", MaskPII(""))
	assert.Equal(t, "*", MaskPII("a"))
	assert.Equal(t, "a*", MaskPII("ab"))
	assert.Equal(t, "a**d", MaskPII("abcd"))
	assert.Equal(t, "my***************om", MaskPII("myemail@example.com"))
}

func TestSafeAttributeValueMasksSensitiveKeys(t *testing.T) {
	// 字段名包含敏感关键字时掩码，与大小写无关
	masked := SafeAttributeValue("user.Email", "ana@example.com", DefaultMaxLength)
	assert.NotContains(t, masked, "ana@example")
	assert.True(t, strings.Contains(masked, "*"))

	// 西语关键字同样命中
	masked = SafeAttributeValue("telefono", "555-0101", DefaultMaxLength)
	assert.Contains(t, masked, "*")

	// 非敏感字段只做截断
	assert.Equal(t, "hola", SafeAttributeValue("greeting", "hola", DefaultMaxLength))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "corto", TruncateString("corto", 10))

	long := strings.Repeat("x", 300)
	got := TruncateString(long, 21)
	assert.LessOrEqual(t, len(got), 21)
	assert.Contains(t, got, "...")
}
