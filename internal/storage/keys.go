package storage

import (
	"fmt"
	"regexp"
)

// 对象键布局是持久化契约的一部分：
// workflows/{ownerID}/{workflowID}/{uniqueSuffix}-{sanitizedFilename}
// 改变布局会使历史 Workflow.FolderPath 与实际对象位置脱节

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// SanitizeFileName 清洗文件名，非 [A-Za-z0-9.-] 字符替换为下划线
func SanitizeFileName(name string) string {
	return unsafeKeyChars.ReplaceAllString(name, "_")
}

// FolderPrefix 工作流目录前缀
// 同一工作流的所有对象键都共享该前缀
func FolderPrefix(ownerID, workflowID string) string {
	return fmt.Sprintf("workflows/%s/%s/", ownerID, workflowID)
}

// ObjectKey 生成工作流附件的对象键
// suffix 由调用方保证唯一（通常为纳秒时间戳），同名文件重复上传不会互相覆盖
func ObjectKey(ownerID, workflowID, filename string, suffix int64) string {
	return fmt.Sprintf("%s%d-%s", FolderPrefix(ownerID, workflowID), suffix, SanitizeFileName(filename))
}

// AvatarKey 生成用户头像的对象键
func AvatarKey(userID, ext string, suffix int64) string {
	return fmt.Sprintf("avatars/%s/avatar-%d%s", userID, suffix, ext)
}
