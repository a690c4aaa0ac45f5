// Package errs 定义业务错误分类
// handler 层通过 errors.Is 将这些哨兵错误映射为 HTTP 状态码
package errs

import "errors"

var (
	// ErrNotFound 引用的工作流/文件/用户不存在
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthenticated 未提供有效会话
	ErrUnauthenticated = errors.New("authentication required")
	// ErrPermissionDenied 已认证但无修改权限
	ErrPermissionDenied = errors.New("permission denied")
	// ErrAccessDenied 已认证但无读取权限
	ErrAccessDenied = errors.New("access denied")
	// ErrValidation 请求参数非法
	ErrValidation = errors.New("validation failed")
	// ErrStorageWrite 对象存储写入失败
	ErrStorageWrite = errors.New("storage write failed")
	// ErrStorageRead 对象存储读取/签名失败
	ErrStorageRead = errors.New("storage read failed")
	// ErrNoFilesFound 工作流目录下没有任何文件
	ErrNoFilesFound = errors.New("no files found")
	// ErrArchiveAssembly 打包失败（列出的对象全部读取失败）
	ErrArchiveAssembly = errors.New("archive assembly failed")
)
