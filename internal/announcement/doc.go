// Package announcement parses the State Council's annual notice on public
// holiday arrangements ("国务院办公厅关于XXXX年部分节假日安排的通知") into
// holidays, their dates and the compensatory workdays around them.
//
// The notice is free text with one ordinal-numbered clause per holiday:
//
//	二、春节：1月28日（农历除夕、周二）至2月4日（农历正月初七、周二）放假调休，共8天。1月26日（周日）、2月8日（周六）上班。
//
// The package does no I/O. Callers hand it text and the year the notice is
// about. Text that contains no clauses parses to an empty Result.
package announcement
