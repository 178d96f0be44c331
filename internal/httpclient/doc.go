// Package httpclient turns request templates into concrete HTTP requests.
//
// A [Materializer] resolves each template against the default domain, fills path
// placeholders and body/query fields with synthetic values, and encodes the body:
//
//	m := httpclient.NewMaterializer("https://api.example.com", synth.New(0))
//	req, err := m.Materialize(tmpl)
//	if errors.Is(err, httpclient.ErrTemplateRejected) {
//		// skip this template for the current cycle
//	}
//	httpReq, err := req.Build(ctx)
//
// GET, OPTIONS and HEAD requests carry only headers and query parameters;
// POST, PUT and DELETE also carry the encoded body.
package httpclient
