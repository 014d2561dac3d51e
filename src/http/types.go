package http

import (
	"github.com/sphinx-core/spxverify/src/core/sphincs/batch"
)

// VerifyRequest carries one verification in hex (or b58: prefixed base58).
type VerifyRequest struct {
	ID        string `json:"id,omitempty"`
	Message   string `json:"message"`
	Signature string `json:"signature" binding:"required"`
	PublicKey string `json:"publicKey" binding:"required"`
}

// BatchRequest carries several verifications.
type BatchRequest struct {
	Items []VerifyRequest `json:"items" binding:"required"`
}

// BatchResponse holds verdicts in request order.
type BatchResponse struct {
	Results []batch.Result `json:"results"`
	Valid   int            `json:"valid"`
}

// ABIRequest carries calldata for the contract verify method.
type ABIRequest struct {
	Calldata string `json:"calldata" binding:"required"`
}

// ParamsResponse describes the active parameter set and its wire sizes.
type ParamsResponse struct {
	Name          string `json:"name"`
	N             int    `json:"n"`
	K             int    `json:"k"`
	A             int    `json:"a"`
	D             int    `json:"d"`
	HPrime        int    `json:"hprime"`
	Hash          string `json:"hash"`
	PublicKeySize int    `json:"publicKeySize"`
	SignatureSize int    `json:"signatureSize"`
	DigestSize    int    `json:"digestSize"`
}

// ErrorResponse is returned with every 4xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}
