package mapper

import (
	"time"

	"github.com/hirevia/ms-go-payments/app/service"
	"github.com/hirevia/ms-go-payments/app/types"
)

func CreateOrderResultToResponse(result *service.CreateOrderResult) *types.CreateOrderResponse {
	if result == nil {
		return nil
	}

	resp := &types.CreateOrderResponse{
		Reference: result.Reference,
		Gateway:   result.Gateway.String(),
		Amount:    result.Amount,
		PayURL:    result.PayURL,
	}
	if result.QR != nil {
		resp.QR = &types.QRInfo{
			ImageURL:        result.QR.ImageURL,
			AccountNumber:   result.QR.AccountNumber,
			AccountName:     result.QR.AccountName,
			BankCode:        result.QR.BankCode,
			TransferContent: result.QR.TransferContent,
		}
	}
	return resp
}

func StatusResultToResponse(reference string, result *service.StatusResult) *types.OrderStatusResponse {
	if result == nil {
		return nil
	}
	resp := &types.OrderStatusResponse{
		Reference: reference,
		Status:    result.Status.String(),
		Amount:    result.Amount,
	}
	if sub := result.Subscription; sub != nil {
		resp.Subscription = &types.SubscriptionInfo{
			PlanID:       sub.PlanID,
			StartDate:    sub.StartDate.Format(time.RFC3339),
			EndDate:      sub.EndDate.Format(time.RFC3339),
			JobPostQuota: sub.JobPostQuota,
			CVViewQuota:  sub.CVViewQuota,
		}
	}
	return resp
}
