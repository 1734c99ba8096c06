package registry

import (
	"fmt"
	htmltemplate "html/template"
	"strings"
)

// DefaultDocumentTitle is used when a presentation has no title.
const DefaultDocumentTitle = "Presentation"

var page = htmltemplate.Must(htmltemplate.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: 'Helvetica Neue', Arial, sans-serif;
            background: linear-gradient(135deg, #1e3c72 0%, #2a5298 100%);
            min-height: 100vh;
            padding: 20px;
        }
        .presentation-container { max-width: 1200px; margin: 0 auto; }
        .slide {
            width: 100%;
            aspect-ratio: 4 / 3;
            background: white;
            margin-bottom: 30px;
            box-shadow: 0 10px 40px rgba(0,0,0,0.3);
            border-radius: 12px;
            overflow: hidden;
            position: relative;
            display: none;
        }
        .slide.active { display: block; animation: slideIn 0.5s ease-out; }
        @keyframes slideIn {
            from { opacity: 0; transform: translateY(20px); }
            to { opacity: 1; transform: translateY(0); }
        }
        .slide-content { padding: 60px 80px; height: 100%; display: flex; flex-direction: column; }
        .slide-opening { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); }
        .slide-section { background: linear-gradient(135deg, #4682b4 0%, #2c5f8d 100%); }
        .slide-closing { background: linear-gradient(135deg, #f093fb 0%, #f5576c 100%); }
        .slide-opening .slide-content, .slide-section .slide-content, .slide-closing .slide-content {
            align-items: center; justify-content: center; text-align: center; color: white;
        }
        .main-title { font-size: 3.5em; font-weight: bold; margin-bottom: 30px; }
        .subtitle { font-size: 1.6em; opacity: 0.9; }
        .section-title { font-size: 3em; font-weight: bold; }
        .decoration-line { width: 120px; height: 4px; background: white; margin: 30px auto 0; }
        .slide-title {
            font-size: 2.2em; color: #2c3e50; text-align: center;
            padding-bottom: 15px; margin-bottom: 30px; border-bottom: 4px solid #4682b4;
        }
        .bullet-list { list-style: none; font-size: 1.4em; color: #34495e; }
        .bullet-list li { margin-bottom: 18px; padding-left: 40px; position: relative; }
        .bullet-list li::before { content: '▶'; position: absolute; left: 0; color: #4682b4; }
        .bullet-list li.indent-1, .bullet-list li.indent-2 { margin-left: 40px; font-size: 0.9em; color: #555; }
        .bullet-list li.indent-1::before, .bullet-list li.indent-2::before { content: '▸'; color: #646464; }
        .image-text-container { display: flex; gap: 40px; flex: 1; }
        .image-text-container.layout-vertical { flex-direction: column; gap: 20px; }
        .image-box { flex: 1; display: flex; align-items: center; justify-content: center; }
        .image-box img, .full-image-container img { max-width: 100%; max-height: 100%; object-fit: contain; }
        .text-box { flex: 1; font-size: 1.3em; line-height: 1.6; color: #2c3e50; }
        .full-image-container { flex: 1; display: flex; flex-direction: column; align-items: center; justify-content: center; }
        .full-image-container img { max-width: 90%; max-height: 70%; }
        .caption { margin-top: 20px; font-size: 1.1em; color: #7f8c8d; text-align: center; }
        .closing-title { font-size: 3.5em; font-weight: bold; margin-bottom: 20px; }
        .closing-subtext { font-size: 1.5em; opacity: 0.9; }
        .element { overflow: hidden; }
        .element img { width: 100%; height: 100%; object-fit: contain; }
        .nav-controls {
            position: fixed; bottom: 30px; left: 50%; transform: translateX(-50%);
            display: flex; gap: 20px; align-items: center;
            background: rgba(255,255,255,0.95); padding: 12px 24px; border-radius: 30px;
        }
        .nav-controls button {
            padding: 8px 20px; border: none; border-radius: 20px;
            background: #4682b4; color: white; cursor: pointer; font-size: 1em;
        }
        .nav-controls button:disabled { background: #bdc3c7; cursor: not-allowed; }
    </style>
</head>
<body>
    <div class="presentation-container">
{{range .Slides}}{{.}}
{{end}}    </div>

    <div class="nav-controls">
        <button id="prevBtn">◀ Previous</button>
        <span class="slide-counter"><span id="currentSlide">1</span> / <span id="totalSlides">0</span></span>
        <button id="nextBtn">Next ▶</button>
    </div>

    <script>
        let currentSlide = 0;
        const slides = document.querySelectorAll('.slide');
        const totalSlides = slides.length;
        const prevBtn = document.getElementById('prevBtn');
        const nextBtn = document.getElementById('nextBtn');
        document.getElementById('totalSlides').textContent = totalSlides;

        function showSlide(n) {
            slides.forEach((slide, i) => slide.classList.toggle('active', i === n));
            document.getElementById('currentSlide').textContent = n + 1;
            prevBtn.disabled = n === 0;
            nextBtn.disabled = n === totalSlides - 1;
        }
        function nextSlide() { if (currentSlide < totalSlides - 1) showSlide(++currentSlide); }
        function prevSlide() { if (currentSlide > 0) showSlide(--currentSlide); }

        prevBtn.addEventListener('click', prevSlide);
        nextBtn.addEventListener('click', nextSlide);
        document.addEventListener('keydown', (e) => {
            if (e.key === 'ArrowRight' || e.key === ' ') { e.preventDefault(); nextSlide(); }
            else if (e.key === 'ArrowLeft') { e.preventDefault(); prevSlide(); }
        });
        if (totalSlides > 0) showSlide(0);
    </script>
</body>
</html>
`))

// Document wraps rendered slide fragments into a navigable HTML page.
// Fragments must come from RenderMarkup, which escapes record content.
func Document(title string, fragments []string) (string, error) {
	if strings.TrimSpace(title) == "" {
		title = DefaultDocumentTitle
	}
	slides := make([]htmltemplate.HTML, len(fragments))
	for i, f := range fragments {
		slides[i] = htmltemplate.HTML(f)
	}

	var sb strings.Builder
	if err := page.Execute(&sb, struct {
		Title  string
		Slides []htmltemplate.HTML
	}{title, slides}); err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}
	return sb.String(), nil
}
