package miniprogram

import "github.com/ShinyNito/FunkDouyin/core"

type TypedRequest[T any] = core.TypedRequest[T]

// Request 调用 SDK 未封装的小程序服务端接口
func Request[T any](c *Client) *TypedRequest[T] {
	return core.NewTypedRequest[T](c.apiClient)
}
