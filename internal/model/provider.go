// Package model はドメインモデルを定義する。
package model

// Provider はAIモデルプロバイダーを表す。
// プロセス起動時に静的定義から読み込まれる参照データであり、実行時に作成・削除されない。
type Provider struct {
	ID             string
	Name           string
	Description    string
	Models         []Model
	APIKeyRequired bool
}

// Model はプロバイダーが提供する選択可能なモデルを表す。
type Model struct {
	ID          string
	Name        string
	Description string
}
