// Package model はドメインモデルを定義する。
package model

import "time"

// UserInfo は外部IDプロバイダーで検証済みのユーザー情報を表す。
// UserIDは外部IdPが発行する不透明な識別子であり、本システムでは生成しない。
type UserInfo struct {
	UserID string
	Email  string
	Name   string
}

// Selection はユーザーが現在選択しているプロバイダーとモデルの組を表す。
// ユーザーごとに最大1レコード。初回保存時に作成され、以降は上書き更新される。
// 削除経路は存在しない。
type Selection struct {
	ID              string
	UserID          string
	CurrentProvider *string
	CurrentModel    *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Credential はユーザーのプロバイダーAPIキーを表す。
// Ciphertextは暗号化済みのキーであり、平文キーは保存もログ出力もされない。
// (UserID, Provider)の組はストレージ層の一意性制約で保証される。
type Credential struct {
	ID         string
	UserID     string
	Provider   string
	Ciphertext string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
