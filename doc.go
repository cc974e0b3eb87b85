// Package botbuilder provides regex-driven dispatch of messages to
// scored candidate handlers.
//
// The dispatch machinery is in packages 'match', 'scorables', and
// 'dispatch', and some command-line tools are in 'cmd'.
package botbuilder
