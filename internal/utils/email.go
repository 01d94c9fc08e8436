package utils

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"inkora_back_end/internal/models"

	"github.com/wneessen/go-mail"
)

func sendMail(to, subject, htmlBody string, pdfAttachment []byte) error {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return fmt.Errorf("SMTP_HOST non configuré")
	}

	msg := mail.NewMsg()
	if err := msg.From("noreply@inkora.shop"); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if pdfAttachment != nil {
		msg.AttachReader("facture_inkora.pdf", bytes.NewReader(pdfAttachment))
	}

	client, err := mail.NewClient(host,
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

// SendOrderConfirmation envoie la confirmation de commande : récap HTML,
// QR de suivi, et facture PDF en pièce jointe quand le rendu aboutit
func SendOrderConfirmation(order models.Order, to string) error {
	qr, err := GenerateTrackingQR(order.ID.String())
	if err != nil {
		log.Println("⚠️ Erreur génération QR suivi :", err)
		qr = ""
	}

	html := orderConfirmationHTML(order, qr)

	pdf, err := RenderInvoicePDF(order.ID.String())
	if err != nil {
		log.Println("⚠️ Erreur génération PDF :", err)
		pdf = nil
	}

	return sendMail(to, "Confirmation de votre commande Inkora", html, pdf)
}

// SendStatusUpdate prévient le client d'un changement de statut
func SendStatusUpdate(order models.Order, to string) error {
	html := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
	<h2>Votre commande Inkora évolue 📦</h2>
	<p>La commande <strong>%s</strong> est maintenant : <strong>%s</strong>.</p>
	<p><a href="%s">Suivre ma commande</a></p>
</body>
</html>`, order.ID.String(), order.Status, trackingURL(order.ID.String()))

	return sendMail(to, "Mise à jour de votre commande Inkora", html, nil)
}

func trackingURL(orderID string) string {
	base := os.Getenv("FRONTEND_URL")
	if base == "" {
		base = "http://localhost:3000"
	}
	return base + "/orders/track/" + orderID
}

func orderConfirmationHTML(order models.Order, qrBase64 string) string {
	itemsHTML := ""
	for _, line := range order.Lines {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td>%s</td>
				<td>%d</td>
				<td>%.2f€</td>
				<td>%.2f€</td>
			</tr>`, line.Name, line.Quantity,
			float64(line.UnitPriceCents)/100,
			float64(line.UnitPriceCents*int64(line.Quantity))/100)
	}

	qrHTML := ""
	if qrBase64 != "" {
		qrHTML = fmt.Sprintf(`<p>Scannez pour suivre votre commande :</p><img src="%s" alt="QR suivi" width="160" height="160"/>`, qrBase64)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
	<h2>Merci pour votre commande Inkora 🎨</h2>
	<p>Commande <strong>%s</strong></p>
	<table border="1" cellpadding="6" cellspacing="0">
		<tr><th>Article</th><th>Qté</th><th>Prix</th><th>Total</th></tr>
		%s
	</table>
	<p><strong>Total : %.2f€</strong></p>
	%s
	<p><a href="%s">Suivre ma commande</a></p>
</body>
</html>`, order.ID.String(), itemsHTML, float64(order.TotalCents)/100, qrHTML, trackingURL(order.ID.String()))
}
