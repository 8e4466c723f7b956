package utils

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"slices"
	"strings"
)

// SHA1Sign 使用 SHA1 计算签名
// 将参数按字典序排序后直接拼接（无分隔符），再计算 SHA1 哈希。
// 不修改传入的切片。
func SHA1Sign(params ...string) string {
	sum := sha1.Sum([]byte(sortedJoin(params, "")))
	return hex.EncodeToString(sum[:])
}

// MD5Sign 参数按字典序排序后以 sep 拼接，再计算 MD5 哈希
func MD5Sign(sep string, params ...string) string {
	return MD5Hex(sortedJoin(params, sep))
}

// MD5Hex 计算字符串 MD5，返回小写十六进制
func MD5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// EqualSignature 常量时间比较两个签名串
func EqualSignature(computed, received string) bool {
	return subtle.ConstantTimeCompare([]byte(computed), []byte(received)) == 1
}

// sortedJoin 按字节序（码点序）升序排序后拼接
func sortedJoin(params []string, sep string) string {
	sorted := slices.Clone(params)
	slices.Sort(sorted)
	return strings.Join(sorted, sep)
}
