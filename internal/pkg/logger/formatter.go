// 自定义日志格式化器：HTTP 访问日志 + 扫描阶段日志
package logger

import (
	"fmt"
	"net/http"
	"time"

	"lanscape/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LogType 日志类型枚举
type LogType string

const (
	// AccessLog 访问日志 - 记录HTTP请求和API调用
	AccessLog LogType = "access"
	// ScanLog 扫描日志 - 记录扫描任务的阶段转换
	ScanLog LogType = "scan"
)

// AccessLogEntry 访问日志条目结构
type AccessLogEntry struct {
	Method       string `json:"method"`
	Path         string `json:"path"`
	Query        string `json:"query"`
	StatusCode   int    `json:"status_code"`
	ResponseTime int64  `json:"response_time"` // 毫秒
	ClientIP     string `json:"client_ip"`
	UserAgent    string `json:"user_agent"`
	RequestID    string `json:"request_id"`
	RequestSize  int64  `json:"request_size"`
	ResponseSize int64  `json:"response_size"`
}

// ScanLogEntry 扫描日志条目结构：记录 Scanner 的阶段转换（spec §4.6）
type ScanLogEntry struct {
	ScanID   string `json:"scan_id"`
	Subnet   string `json:"subnet"`
	Stage    string `json:"stage"`
	Message  string `json:"message"`
	Duration int64  `json:"duration"` // 毫秒，完成/终止时才有意义
}

// LogHTTPRequest 记录标准HTTP请求日志（非Gin框架），供持有裸 *http.Request 的调用方使用
func LogHTTPRequest(r *http.Request, statusCode int, responseTime time.Duration, requestID string) {
	if LoggerInstance == nil {
		return
	}

	entry := AccessLogEntry{
		Method:       r.Method,
		Path:         r.URL.Path,
		Query:        r.URL.RawQuery,
		StatusCode:   statusCode,
		ResponseTime: responseTime.Milliseconds(),
		ClientIP:     utils.GetClientIPFromRequest(r),
		UserAgent:    r.UserAgent(),
		RequestID:    requestID,
		RequestSize:  r.ContentLength,
	}

	LoggerInstance.logger.WithFields(logrus.Fields{
		"type":          AccessLog,
		"method":        entry.Method,
		"path":          entry.Path,
		"query":         entry.Query,
		"status_code":   entry.StatusCode,
		"response_time": entry.ResponseTime,
		"client_ip":     entry.ClientIP,
		"user_agent":    entry.UserAgent,
		"request_id":    entry.RequestID,
		"request_size":  entry.RequestSize,
	}).Info("HTTP request processed")
}

// LogAccessRequest 记录Gin HTTP访问日志，供 internal/httpapi 的访问日志中间件调用
func LogAccessRequest(c *gin.Context, startTime time.Time, requestID string) {
	if LoggerInstance == nil {
		return
	}

	responseTime := time.Since(startTime).Milliseconds()

	entry := AccessLogEntry{
		Method:       c.Request.Method,
		Path:         c.Request.URL.Path,
		Query:        c.Request.URL.RawQuery,
		StatusCode:   c.Writer.Status(),
		ResponseTime: responseTime,
		ClientIP:     utils.GetClientIP(c),
		UserAgent:    c.Request.UserAgent(),
		RequestID:    requestID,
		RequestSize:  c.Request.ContentLength,
		ResponseSize: int64(c.Writer.Size()),
	}

	LoggerInstance.logger.WithFields(logrus.Fields{
		"type":          AccessLog,
		"method":        entry.Method,
		"path":          entry.Path,
		"query":         entry.Query,
		"status_code":   entry.StatusCode,
		"response_time": entry.ResponseTime,
		"client_ip":     entry.ClientIP,
		"user_agent":    entry.UserAgent,
		"request_id":    entry.RequestID,
		"request_size":  entry.RequestSize,
		"response_size": entry.ResponseSize,
	}).Info("HTTP request processed")
}

// LogScanStage 记录一次 Scanner 阶段转换（spec §4.6 的阶段机）。
func LogScanStage(scanID, subnet, stage, message string, duration time.Duration) {
	if LoggerInstance == nil {
		return
	}

	entry := ScanLogEntry{
		ScanID:   scanID,
		Subnet:   subnet,
		Stage:    stage,
		Message:  message,
		Duration: duration.Milliseconds(),
	}

	fields := logrus.Fields{
		"type":     ScanLog,
		"scan_id":  entry.ScanID,
		"subnet":   entry.Subnet,
		"stage":    entry.Stage,
		"duration": entry.Duration,
	}

	LoggerInstance.logger.WithFields(fields).Info(fmt.Sprintf("scan %s: %s", scanID, message))
}
