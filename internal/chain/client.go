// Package chain submits USDC transfers on an EVM chain and watches them to
// finality. It wraps go-ethereum's ethclient behind the narrow interfaces the
// settlement flow consumes.
package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/hallenjay/tokentribute/internal/domain"
)

// erc20TransferSelector is the 4-byte selector of transfer(address,uint256).
var erc20TransferSelector = common.Hex2Bytes("a9059cbb")

// erc20BalanceOfSelector is the 4-byte selector of balanceOf(address).
var erc20BalanceOfSelector = common.Hex2Bytes("70a08231")

// ClientConfig holds chain connection parameters.
type ClientConfig struct {
	RPCEndpoint  string
	ChainID      int64
	TokenAddress string // USDC contract
	// PrivateKeyHex is the operator wallet key, with or without 0x prefix.
	PrivateKeyHex string
	// ReceiptPollInterval controls how often the confirmation watcher polls
	// for a receipt. Zero means the default of 2s.
	ReceiptPollInterval time.Duration
}

// Client is the wallet session plus chain access for the donation service.
// It implements TransferSender and ConfirmationWatcher.
type Client struct {
	eth          *ethclient.Client
	chainID      *big.Int
	token        common.Address
	privateKey   *ecdsa.PrivateKey
	fromAddress  common.Address
	pollInterval time.Duration
	logger       *slog.Logger
}

// New dials the RPC endpoint and derives the operator address from the
// private key. The returned client holds the only wallet session the service
// has; no session means donations are disabled.
func New(cfg ClientConfig, logger *slog.Logger) (*Client, error) {
	eth, err := ethclient.Dial(cfg.RPCEndpoint)
	if err != nil {
		return nil, fmt.Errorf("chain: dial %s: %w", cfg.RPCEndpoint, err)
	}

	pk, err := ethcrypto.HexToECDSA(strip0x(cfg.PrivateKeyHex))
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("chain: invalid private key: %w", err)
	}

	poll := cfg.ReceiptPollInterval
	if poll <= 0 {
		poll = 2 * time.Second
	}

	c := &Client{
		eth:          eth,
		chainID:      big.NewInt(cfg.ChainID),
		token:        common.HexToAddress(cfg.TokenAddress),
		privateKey:   pk,
		fromAddress:  ethcrypto.PubkeyToAddress(pk.PublicKey),
		pollInterval: poll,
		logger:       logger.With(slog.String("component", "chain")),
	}

	c.logger.Info("chain client initialized",
		slog.Int64("chain_id", cfg.ChainID),
		slog.String("token", c.token.Hex()),
		slog.String("operator", c.fromAddress.Hex()),
	)

	return c, nil
}

// Close releases the RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

// Address returns the operator wallet address and whether a session exists.
func (c *Client) Address() (string, bool) {
	if c.privateKey == nil {
		return "", false
	}
	return c.fromAddress.Hex(), true
}

// TokenBalance returns the operator's USDC balance in base units.
func (c *Client) TokenBalance(ctx context.Context) (*big.Int, error) {
	data := append(append([]byte{}, erc20BalanceOfSelector...),
		common.LeftPadBytes(c.fromAddress.Bytes(), 32)...)

	result, err := c.eth.CallContract(ctx, ethereum.CallMsg{
		To:   &c.token,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("chain: balanceOf: %w", err)
	}
	if len(result) < 32 {
		return nil, fmt.Errorf("chain: balanceOf: short response (%d bytes)", len(result))
	}
	return new(big.Int).SetBytes(result), nil
}

// SendTokenTransfer builds, signs, and broadcasts an ERC-20 transfer of
// amount base units to the recipient. It returns the transaction hash once
// the transaction is accepted by the node; confirmation is a separate wait.
func (c *Client) SendTokenTransfer(ctx context.Context, to string, amount *big.Int) (string, error) {
	if c.privateKey == nil {
		return "", domain.ErrNoWalletSession
	}

	recipient := common.HexToAddress(to)
	data := append(append([]byte{}, erc20TransferSelector...),
		append(common.LeftPadBytes(recipient.Bytes(), 32),
			common.LeftPadBytes(amount.Bytes(), 32)...)...)

	nonce, err := c.eth.PendingNonceAt(ctx, c.fromAddress)
	if err != nil {
		return "", fmt.Errorf("chain: nonce: %w", err)
	}

	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("chain: gas price: %w", err)
	}

	gasLimit, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{
		From: c.fromAddress,
		To:   &c.token,
		Data: data,
	})
	if err != nil {
		// Estimation failures include ERC-20 reverts such as insufficient
		// balance; surface the raw error so the submitter can classify it.
		return "", fmt.Errorf("chain: estimate gas: %w", err)
	}
	gasLimit = gasLimit * 120 / 100

	tx := types.NewTransaction(nonce, c.token, big.NewInt(0), gasLimit, gasPrice, data)

	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(c.chainID), c.privateKey)
	if err != nil {
		return "", fmt.Errorf("chain: sign: %w", err)
	}

	if err := c.eth.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("chain: broadcast: %w", err)
	}

	hash := signedTx.Hash().Hex()
	c.logger.InfoContext(ctx, "transfer broadcast",
		slog.String("tx_hash", hash),
		slog.String("to", recipient.Hex()),
		slog.String("amount_units", amount.String()),
		slog.Uint64("nonce", nonce),
	)

	return hash, nil
}

// AwaitConfirmation polls for the transaction receipt until it appears, the
// timeout elapses, or the context is cancelled. A broadcast transaction
// cannot be recalled: on timeout the caller only stops watching, and the
// transfer may still confirm out-of-band later.
func (c *Client) AwaitConfirmation(ctx context.Context, txHash string, timeout time.Duration) (Confirmation, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	hash := common.HexToHash(txHash)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return Confirmation{Status: ConfirmationTimedOut, TxHash: txHash},
				fmt.Errorf("chain: await %s: %w", txHash, domain.ErrConfirmationTimeout)
		case <-ticker.C:
			receipt, err := c.eth.TransactionReceipt(ctx, hash)
			if err != nil || receipt == nil {
				continue // not yet mined
			}
			if receipt.Status == types.ReceiptStatusFailed {
				return Confirmation{Status: ConfirmationReverted, TxHash: txHash},
					fmt.Errorf("chain: await %s: %w", txHash, domain.ErrTransactionReverted)
			}
			c.logger.InfoContext(ctx, "transfer confirmed",
				slog.String("tx_hash", txHash),
				slog.Uint64("block", receipt.BlockNumber.Uint64()),
			)
			return Confirmation{Status: ConfirmationConfirmed, TxHash: txHash}, nil
		}
	}
}

func strip0x(s string) string {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s[2:]
	}
	return s
}
