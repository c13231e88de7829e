// Package middleware 提供了 HTTP 請求處理的中間件。
//
// 目前只有 JWT 身份驗證：解析 token 後把用戶的 ID、信箱和角色
// 放進請求上下文，HTTP 和 WebSocket 兩個入口都依賴這個身份，
// 不再各自驗證。
package middleware
