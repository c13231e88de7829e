// Package api 處理請求路由和入口轉換。
//
// 這個包包含了 HTTP 處理器和 WebSocket 入口。
// 兩個入口都只把請求轉換為相同的服務調用，
// 加入規則本身只在服務層實現一次。
package api
