package service

import "strings"

// DetectIntent 关键词匹配：大小写不敏感的子串包含，命中任意一个即可。
// 不做分词，模糊匹配是刻意的。
func DetectIntent(text string, keywords []string) bool {
	lowerText := strings.ToLower(text)
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(lowerText, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
